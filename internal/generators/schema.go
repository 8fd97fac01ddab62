package generators

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/fixturegen/internal/domain"
)

const maxRefDepth = 32

// Faker fakes a record from a fixture schema. Property values come from the
// property's x-generator when one is set, otherwise from const, enum, type
// and format.
type Faker struct {
	generators Lookup
}

func NewFaker(generators Lookup) *Faker {
	return &Faker{generators: generators}
}

// Fake produces one record. refs are consulted, by $id, when the schema
// contains $ref pointers that are not local to the document.
func (f *Faker) Fake(rng *rand.Rand, schema *domain.Schema, refs []*domain.Schema, ctx GeneratorContext) (domain.Record, error) {
	if schema == nil {
		return nil, errors.New("nil schema")
	}
	w := &walker{
		faker: f,
		rng:   rng,
		ctx:   ctx,
		refs:  indexRefs(refs),
	}
	v, err := w.value(schema, schema, "", 0)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("fixture schema must describe an object, got %T", v)
	}
	return domain.Record(obj), nil
}

func indexRefs(refs []*domain.Schema) map[string]*domain.Schema {
	out := make(map[string]*domain.Schema, len(refs))
	for _, r := range refs {
		if r == nil || r.ID == "" {
			continue
		}
		out[strings.TrimSuffix(r.ID, "#")] = r
	}
	return out
}

type walker struct {
	faker *Faker
	rng   *rand.Rand
	ctx   GeneratorContext
	refs  map[string]*domain.Schema
}

func (w *walker) value(node, root *domain.Schema, path string, depth int) (interface{}, error) {
	if depth > maxRefDepth {
		return nil, fmt.Errorf("%s: schema nesting exceeds %d levels (cyclic $ref?)", pathOrRoot(path), maxRefDepth)
	}
	if node == nil {
		return nil, fmt.Errorf("%s: missing schema", pathOrRoot(path))
	}

	if node.Ref != "" {
		target, targetRoot, err := w.resolve(node.Ref, root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pathOrRoot(path), err)
		}
		return w.value(target, targetRoot, path, depth+1)
	}

	if node.Generator != nil {
		if w.faker.generators == nil {
			return nil, fmt.Errorf("%s: no generator registry configured", pathOrRoot(path))
		}
		gen, err := w.faker.generators.Get(node.Generator.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pathOrRoot(path), err)
		}
		v, err := gen.Generate(w.rng, *node.Generator, w.ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", pathOrRoot(path), node.Generator.Type, err)
		}
		return v, nil
	}

	if node.Const != nil {
		return node.Const, nil
	}
	if len(node.Enum) > 0 {
		return node.Enum[w.rng.Intn(len(node.Enum))], nil
	}

	switch node.Type {
	case domain.TypeObject:
		return w.object(node, root, path, depth)
	case domain.TypeArray:
		return w.array(node, root, path, depth)
	case domain.TypeString:
		return w.str(node)
	case domain.TypeInteger:
		return w.integer(node, path)
	case domain.TypeNumber:
		return w.number(node, path)
	case domain.TypeBoolean:
		return w.rng.Intn(2) == 1, nil
	case domain.TypeNull:
		return nil, nil
	case "":
		if node.Properties != nil {
			return w.object(node, root, path, depth)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %q", pathOrRoot(path), node.Type)
	}
}

// resolve follows a $ref. "#/definitions/x" is local to the current document,
// "id" and "id#/definitions/x" point into an external reference.
func (w *walker) resolve(ref string, root *domain.Schema) (*domain.Schema, *domain.Schema, error) {
	docID, fragment, _ := strings.Cut(ref, "#")

	doc := root
	if docID != "" {
		ext, ok := w.refs[docID]
		if !ok {
			return nil, nil, fmt.Errorf("unresolvable reference %q", ref)
		}
		doc = ext
	}
	if fragment == "" || fragment == "/" {
		return doc, doc, nil
	}

	name, ok := strings.CutPrefix(fragment, "/definitions/")
	if !ok || name == "" {
		return nil, nil, fmt.Errorf("unsupported reference %q", ref)
	}
	target, ok := doc.Definitions[name]
	if !ok {
		return nil, nil, fmt.Errorf("unresolvable reference %q", ref)
	}
	return target, doc, nil
}

func (w *walker) object(node, root *domain.Schema, path string, depth int) (interface{}, error) {
	keys := make([]string, 0, len(node.Properties))
	for k := range node.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		v, err := w.value(node.Properties[k], root, joinPath(path, k), depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (w *walker) array(node, root *domain.Schema, path string, depth int) (interface{}, error) {
	minItems := 1
	if node.MinItems != nil {
		minItems = *node.MinItems
	}
	maxItems := minItems + 2
	if node.MaxItems != nil {
		maxItems = *node.MaxItems
	}
	if maxItems < minItems {
		return nil, fmt.Errorf("%s: maxItems (%d) is below minItems (%d)", pathOrRoot(path), maxItems, minItems)
	}

	n := minItems + w.rng.Intn(maxItems-minItems+1)
	out := make([]interface{}, 0, n)
	if node.Items == nil {
		return out, nil
	}
	for i := 0; i < n; i++ {
		v, err := w.value(node.Items, root, fmt.Sprintf("%s[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (w *walker) str(node *domain.Schema) (interface{}, error) {
	switch node.Format {
	case "email":
		return faker.Email(), nil
	case "uuid":
		return faker.UUIDHyphenated(), nil
	case "uri", "url":
		return faker.URL(), nil
	case "hostname":
		return faker.DomainName(), nil
	case "ipv4":
		return faker.IPv4(), nil
	case "ipv6":
		return faker.IPv6(), nil
	case "date":
		return w.pastTime().Format("2006-01-02"), nil
	case "date-time":
		return w.pastTime().Format(time.RFC3339), nil
	case "name":
		return faker.Name(), nil
	case "first-name":
		return faker.FirstName(), nil
	case "last-name":
		return faker.LastName(), nil
	case "username":
		return faker.Username(), nil
	case "phone":
		return faker.Phonenumber(), nil
	case "sentence":
		return faker.Sentence(), nil
	}

	minLen := 0
	if node.MinLength != nil {
		minLen = *node.MinLength
	}
	s := faker.Word()
	for len(s) < minLen {
		s += faker.Word()
	}
	if node.MaxLength != nil && len(s) > *node.MaxLength {
		s = s[:*node.MaxLength]
	}
	return s, nil
}

func (w *walker) pastTime() time.Time {
	now := w.ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	back := time.Duration(w.rng.Int63n(int64(365 * 24 * time.Hour)))
	return now.Add(-back).UTC().Truncate(time.Second)
}

func (w *walker) integer(node *domain.Schema, path string) (interface{}, error) {
	lo, hi := bounds(node, 1000)
	min, max := int64(lo), int64(hi)
	if max < min {
		return nil, fmt.Errorf("%s: maximum (%d) is below minimum (%d)", pathOrRoot(path), max, min)
	}
	return min + w.rng.Int63n(max-min+1), nil
}

func (w *walker) number(node *domain.Schema, path string) (interface{}, error) {
	min, max := bounds(node, 1000)
	if max < min {
		return nil, fmt.Errorf("%s: maximum (%v) is below minimum (%v)", pathOrRoot(path), max, min)
	}
	return min + w.rng.Float64()*(max-min), nil
}

// bounds fills in an open side of a numeric range with width span.
func bounds(node *domain.Schema, span float64) (float64, float64) {
	switch {
	case node.Minimum != nil && node.Maximum != nil:
		return *node.Minimum, *node.Maximum
	case node.Minimum != nil:
		return *node.Minimum, *node.Minimum + span
	case node.Maximum != nil:
		return *node.Maximum - span, *node.Maximum
	default:
		return 0, span
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathOrRoot(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
