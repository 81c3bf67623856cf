package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario for one entity: rows to store and
// predicate cases whose matches are counted against the database.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is a CUE file or directory holding the entity mapping.
	// Relative paths are resolved against the scenario file.
	Catalog string `yaml:"catalog"`

	// Entity is the catalog entity the cases select.
	Entity string `yaml:"entity"`

	// Fixtures are rows keyed by attribute path, inserted in order before
	// the cases run. Rows without an identifier get a sequential one.
	Fixtures []map[string]any `yaml:"fixtures,omitempty"`

	// Cases are evaluated independently against the fixtures.
	Cases []Case `yaml:"cases"`
}

// Case is one predicate with its expected match count.
type Case struct {
	Name string `yaml:"name"`

	// Where is the predicate tree. A missing tree matches every row.
	Where *Predicate `yaml:"where,omitempty"`

	OrderBy []OrderTerm `yaml:"order_by,omitempty"`

	// ExpectCount is the number of matching rows.
	ExpectCount int64 `yaml:"expect_count"`

	// ExpectIDs, when set, lists the identifiers of the matching rows in
	// selection order.
	ExpectIDs []string `yaml:"expect_ids,omitempty"`
}

// OrderTerm sorts the matches of a case by one attribute.
type OrderTerm struct {
	Attr string `yaml:"attr"`
	Desc bool   `yaml:"desc,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and the catalog path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. The first invalid file stops loading.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields. Predicate trees are checked
// against the catalog when the scenario runs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog not found: %s", s.Catalog)
	}

	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
		if c.ExpectCount < 0 {
			return fmt.Errorf("cases[%d]: expect_count must be non-negative", i)
		}
		if c.ExpectIDs != nil && int64(len(c.ExpectIDs)) != c.ExpectCount {
			return fmt.Errorf("cases[%d]: expect_ids lists %d rows but expect_count is %d", i, len(c.ExpectIDs), c.ExpectCount)
		}
		for j, o := range c.OrderBy {
			if o.Attr == "" {
				return fmt.Errorf("cases[%d].order_by[%d]: attr is required", i, j)
			}
		}
	}

	return nil
}
