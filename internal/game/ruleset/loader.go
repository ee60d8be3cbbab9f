package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads all .yaml files in dir, concatenates their lists in
// lexicographic file order, and builds a Catalog.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a validated Catalog (possibly empty) or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	var merged Content
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Content
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing ruleset file %s: %w", path, err)
		}
		merged.Attributes = append(merged.Attributes, c.Attributes...)
		merged.Skills = append(merged.Skills, c.Skills...)
		merged.Resistances = append(merged.Resistances, c.Resistances...)
		merged.Attacks = append(merged.Attacks, c.Attacks...)
	}
	return NewCatalog(merged)
}

// LoadCatalogOrDefault returns DefaultCatalog when dir is empty and
// LoadCatalog(dir) otherwise.
func LoadCatalogOrDefault(dir string) (*Catalog, error) {
	if dir == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(dir)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
