package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/registry"
)

type Validator struct {
	genRegistry *registry.GeneratorRegistry
	structs     *validator.Validate
}

func NewValidator(genRegistry *registry.GeneratorRegistry) *Validator {
	return &Validator{
		genRegistry: genRegistry,
		structs:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// identifier validation: allow simple SQL identifiers only (prevents injection via table names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !identRe.MatchString(s) {
		return false
	}
	_, reserved := reservedWords[strings.ToLower(s)]
	return !reserved
}

// ValidateCollection reports whether name can be used as a table or index
// name by the SQL and search targets.
func ValidateCollection(name string) error {
	if !IsValidIdentifier(name) {
		return fmt.Errorf("invalid collection identifier: %q", name)
	}
	return nil
}

// ValidateFixture checks what can be checked without generating: the
// fixture has a name, every x-generator names a registered generator with
// usable params, and local definitions do not reference each other in a
// cycle.
func (v *Validator) ValidateFixture(name string, schema *domain.Schema) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("fixture name is required")
	}
	if schema == nil {
		return fmt.Errorf("fixture %q has no schema", name)
	}
	if err := v.validateGenerators(schema, "", 0); err != nil {
		return fmt.Errorf("fixture %q: %w", name, err)
	}
	if cycle := definitionCycle(schema); cycle != "" {
		return fmt.Errorf("fixture %q: cyclic $ref through definition %q", name, cycle)
	}
	return nil
}

const maxSchemaDepth = 64

func (v *Validator) validateGenerators(s *domain.Schema, path string, depth int) error {
	if s == nil {
		return nil
	}
	if depth > maxSchemaDepth {
		return fmt.Errorf("%s: schema nested deeper than %d levels", displayPath(path), maxSchemaDepth)
	}
	if s.Generator != nil {
		if s.Generator.Type == "" {
			return fmt.Errorf("%s: x-generator type is required", displayPath(path))
		}
		if err := v.genRegistry.ValidateSpec(*s.Generator); err != nil {
			return fmt.Errorf("%s: %w", displayPath(path), err)
		}
	}
	for _, k := range sortedKeys(s.Properties) {
		if err := v.validateGenerators(s.Properties[k], childPath(path, k), depth+1); err != nil {
			return err
		}
	}
	if err := v.validateGenerators(s.Items, path+"[]", depth+1); err != nil {
		return err
	}
	for _, k := range sortedKeys(s.Definitions) {
		if err := v.validateGenerators(s.Definitions[k], "#/definitions/"+k, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// definitionCycle returns a definition that takes part in a $ref-only cycle,
// or "" if there is none. A bare-$ref definition produces no value of its
// own, so a cycle among them can never generate anything.
func definitionCycle(s *domain.Schema) string {
	graph := make(map[string][]string, len(s.Definitions))
	for name, def := range s.Definitions {
		graph[name] = nil
		if def == nil {
			continue
		}
		if target, ok := strings.CutPrefix(def.Ref, "#/definitions/"); ok {
			graph[name] = append(graph[name], target)
		}
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	for _, node := range sortedKeys(graph) {
		if !visited[node] && hasCycleDFS(node, graph, visited, recStack) {
			return node
		}
	}
	return ""
}

func hasCycleDFS(node string, graph map[string][]string, visited, recStack map[string]bool) bool {
	visited[node] = true
	recStack[node] = true

	for _, neighbor := range graph[node] {
		if !visited[neighbor] {
			if hasCycleDFS(neighbor, graph, visited, recStack) {
				return true
			}
		} else if recStack[neighbor] {
			return true
		}
	}

	recStack[node] = false
	return false
}

func (v *Validator) ValidateTarget(t *domain.TargetConfig) error {
	if err := v.structs.Struct(t); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if t.Database != "" && !IsValidIdentifier(t.Database) && t.Kind != domain.TargetSurrealDB {
		return fmt.Errorf("invalid target database identifier: %s", t.Database)
	}

	switch t.Kind {
	case domain.TargetPostgres:
		if t.Schema != "" && !IsValidIdentifier(t.Schema) {
			return fmt.Errorf("invalid target schema identifier: %s", t.Schema)
		}
	case domain.TargetMemory, domain.TargetSQLite, domain.TargetMySQL:
		if t.Schema != "" {
			return fmt.Errorf("%s targets must not set schema", t.Kind)
		}
	case domain.TargetElasticsearch:
		if t.Schema != "" {
			return fmt.Errorf("%s targets must not set schema", t.Kind)
		}
		if t.Database != "" {
			return errors.New("elasticsearch targets must not set database")
		}
	case domain.TargetSurrealDB:
		// schema carries the namespace, database the database name
	default:
		return fmt.Errorf("unsupported target kind: %s", t.Kind)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
