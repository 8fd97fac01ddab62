package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"gopkg.in/yaml.v3"
)

// Collision records a fixture name defined by more than one file. The
// definition from File replaced the one from Previous.
type Collision struct {
	Name     string `json:"name"`
	Previous string `json:"previous"`
	File     string `json:"file"`
}

type LoadResult struct {
	Fixtures   map[string]*domain.Schema
	Sources    map[string]string
	Files      []string
	Collisions []Collision
}

// Names returns the loaded fixture names, sorted.
func (r *LoadResult) Names() []string {
	names := make([]string, 0, len(r.Fixtures))
	for name := range r.Fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileLoader reads fixture definitions from a directory. Every .yaml, .yml
// or .json file holds a mapping of fixture name to schema. Files are read
// in lexical order and a later file wins when two define the same name.
type FileLoader struct {
	baseDir string
	logger  *logging.Logger
}

func NewFileLoader(baseDir string, logger *logging.Logger) *FileLoader {
	return &FileLoader{baseDir: baseDir, logger: logger.WithComponent("fixtures")}
}

func (l *FileLoader) Load() (*LoadResult, error) {
	res := &LoadResult{
		Fixtures: make(map[string]*domain.Schema),
		Sources:  make(map[string]string),
	}
	if _, err := os.Stat(l.baseDir); os.IsNotExist(err) {
		l.logger.Warnw("fixtures.dir_missing", map[string]any{"dir": l.baseDir})
		return res, nil
	}

	// os.ReadDir returns entries sorted by file name.
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, domain.ConfigurationError("load_fixtures", "", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isFixtureFile(entry.Name()) {
			continue
		}
		path := filepath.Join(l.baseDir, entry.Name())
		defs, err := readFixtureFile(path)
		if err != nil {
			return nil, domain.ConfigurationError("load_fixtures", "", fmt.Errorf("%s: %w", entry.Name(), err))
		}
		res.Files = append(res.Files, entry.Name())

		for _, name := range sortedNames(defs) {
			if prev, ok := res.Sources[name]; ok {
				c := Collision{Name: name, Previous: prev, File: entry.Name()}
				res.Collisions = append(res.Collisions, c)
				l.logger.Warnw("fixtures.collision", map[string]any{
					"fixture":  name,
					"previous": prev,
					"file":     entry.Name(),
				})
			}
			res.Fixtures[name] = defs[name]
			res.Sources[name] = entry.Name()
		}
	}

	l.logger.Debugw("fixtures.loaded", map[string]any{
		"dir":      l.baseDir,
		"files":    len(res.Files),
		"fixtures": len(res.Fixtures),
	})
	return res, nil
}

func isFixtureFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func readFixtureFile(path string) (map[string]*domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	defs := map[string]*domain.Schema{}
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &defs)
	} else {
		err = yaml.Unmarshal(data, &defs)
	}
	if err != nil {
		return nil, err
	}
	for name, schema := range defs {
		if schema == nil {
			return nil, fmt.Errorf("fixture %q has an empty schema", name)
		}
	}
	return defs, nil
}

func sortedNames(defs map[string]*domain.Schema) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
