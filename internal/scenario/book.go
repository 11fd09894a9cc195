package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"ReturnLens/internal/model"
)

// Scenario is a named calculation kept in a book.
type Scenario struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description,omitempty"`
	Request     model.CalculationRequest `yaml:",inline"`
}

// Book is the YAML file of scenarios the service re-evaluates.
type Book struct {
	Scenarios []Scenario `yaml:"scenarios"`
	UpdatedAt time.Time  `yaml:"updated_at,omitempty"`
}

// LoadBook reads a book from a YAML file. Returns an empty book if the file
// doesn't exist.
func LoadBook(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Book{}, nil
		}
		return nil, fmt.Errorf("read scenario book: %w", err)
	}
	var b Book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse scenario book: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveBook writes the book to a YAML file, creating its directory.
func SaveBook(path string, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode scenario book: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scenario dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that every scenario has a unique, non-empty name and a
// mode. The inputs themselves are checked by the calculator.
func (b *Book) Validate() error {
	seen := make(map[string]bool, len(b.Scenarios))
	for i, s := range b.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenario %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.Request.Mode == "" {
			return fmt.Errorf("scenario %q: mode is required", s.Name)
		}
	}
	return nil
}

// Lookup returns the scenario called name.
func (b *Book) Lookup(name string) (Scenario, bool) {
	for _, s := range b.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Put adds s, replacing any scenario with the same name.
func (b *Book) Put(s Scenario) {
	for i := range b.Scenarios {
		if b.Scenarios[i].Name == s.Name {
			b.Scenarios[i] = s
			return
		}
	}
	b.Scenarios = append(b.Scenarios, s)
}

// RequestAt returns the scenario's request with a missing reference date
// set to today's date in the location of now.
func (s Scenario) RequestAt(now time.Time) model.CalculationRequest {
	req := s.Request
	if req.ReferenceDate.IsZero() {
		y, m, d := now.Date()
		req.ReferenceDate = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	return req
}
