// Package library keeps saved audiences in a YAML file so they can be
// reopened in the editor later.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyaudience/internal/editor"
	"github.com/rebeliceyang/lazyaudience/internal/expr"
)

var (
	ErrNotFound      = errors.New("audience not found")
	ErrDuplicateName = errors.New("audience name already exists")
	ErrEmptyName     = errors.New("audience name cannot be empty")
	ErrEmptyAudience = errors.New("audience has no configured conditions")
)

// Audience is a saved editing state together with its compiled expression
type Audience struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	editor.Snapshot `yaml:",inline"`

	Expression string    `yaml:"expression" json:"expression"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at" json:"updated_at"`
	UsageCount int       `yaml:"usage_count" json:"usage_count"`
	LastUsed   time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
}

// Compiled parses the stored expression
func (a Audience) Compiled() (expr.Expression, error) {
	var doc expr.Document
	if err := doc.UnmarshalJSON([]byte(a.Expression)); err != nil {
		return nil, fmt.Errorf("audience %q: %w", a.Name, err)
	}
	return doc.Expression, nil
}

// QuestionIDs lists the questions the audience filters on
func (a Audience) QuestionIDs() []string {
	e, err := a.Compiled()
	if err != nil {
		return nil
	}
	return expr.QuestionIDs(e)
}

// Manager manages saved audiences
type Manager struct {
	path      string
	audiences []Audience
	now       func() time.Time
}

// NewManager opens the library stored at path. A missing file is an empty
// library.
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:      path,
		audiences: []Audience{},
		now:       time.Now,
	}

	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load audiences: %w", err)
		}
	}

	return m, nil
}

// Path returns the library file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads the library file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read audiences file: %w", err)
	}

	var audiences []Audience
	if err := yaml.Unmarshal(data, &audiences); err != nil {
		return fmt.Errorf("failed to parse audiences: %w", err)
	}
	if audiences == nil {
		audiences = []Audience{}
	}
	m.audiences = audiences

	return nil
}

// Save writes the library file, creating its directory if needed
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.audiences)
	if err != nil {
		return fmt.Errorf("failed to marshal audiences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write audiences file: %w", err)
	}

	return nil
}

func (m *Manager) validate(id, name string, expression []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	var doc expr.Document
	if err := doc.UnmarshalJSON(expression); err != nil {
		return err
	}
	if doc.Expression == nil {
		return ErrEmptyAudience
	}
	if existing, ok := m.FindByName(name); ok && existing.ID != id {
		return fmt.Errorf("%w: %q (names are case-insensitive)", ErrDuplicateName, name)
	}
	return nil
}

func (m *Manager) index(id string) int {
	for i, a := range m.audiences {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Add saves a new audience. expression is the compiled wire JSON.
func (m *Manager) Add(name, description string, snap editor.Snapshot, expression []byte) (*Audience, error) {
	name = strings.TrimSpace(name)
	if err := m.validate("", name, expression); err != nil {
		return nil, err
	}

	now := m.now()
	audience := Audience{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Snapshot:    snap,
		Expression:  string(expression),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.audiences = append(m.audiences, audience)

	if err := m.Save(); err != nil {
		m.audiences = m.audiences[:len(m.audiences)-1]
		return nil, fmt.Errorf("failed to save audience: %w", err)
	}

	return &audience, nil
}

// Update replaces the content of an existing audience
func (m *Manager) Update(id, name, description string, snap editor.Snapshot, expression []byte) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	name = strings.TrimSpace(name)
	if err := m.validate(id, name, expression); err != nil {
		return err
	}

	previous := m.audiences[i]
	m.audiences[i].Name = name
	m.audiences[i].Description = strings.TrimSpace(description)
	m.audiences[i].Snapshot = snap
	m.audiences[i].Expression = string(expression)
	m.audiences[i].UpdatedAt = m.now()

	if err := m.Save(); err != nil {
		m.audiences[i] = previous
		return fmt.Errorf("failed to save audience: %w", err)
	}
	return nil
}

// Delete removes an audience by id
func (m *Manager) Delete(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	audiences := make([]Audience, 0, len(m.audiences)-1)
	audiences = append(audiences, m.audiences[:i]...)
	audiences = append(audiences, m.audiences[i+1:]...)

	previous := m.audiences
	m.audiences = audiences
	if err := m.Save(); err != nil {
		m.audiences = previous
		return fmt.Errorf("failed to save audiences after deletion: %w", err)
	}
	return nil
}

// Get returns an audience by id
func (m *Manager) Get(id string) (*Audience, error) {
	i := m.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a := m.audiences[i]
	return &a, nil
}

// FindByName returns the audience with the given name, ignoring case
func (m *Manager) FindByName(name string) (*Audience, bool) {
	name = strings.TrimSpace(name)
	for _, a := range m.audiences {
		if strings.EqualFold(a.Name, name) {
			return &a, true
		}
	}
	return nil, false
}

// GetAll returns all audiences sorted by name
func (m *Manager) GetAll() []Audience {
	sorted := make([]Audience, len(m.audiences))
	copy(sorted, m.audiences)

	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	return sorted
}

// Search matches audiences by name, description or question id
func (m *Manager) Search(query string) []Audience {
	all := m.GetAll()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all
	}

	var results []Audience
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Name), query) ||
			strings.Contains(strings.ToLower(a.Description), query) {
			results = append(results, a)
			continue
		}

		for _, id := range a.QuestionIDs() {
			if strings.Contains(strings.ToLower(id), query) {
				results = append(results, a)
				break
			}
		}
	}

	return results
}

// RecordUsage updates usage statistics for an audience
func (m *Manager) RecordUsage(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.audiences[i].UsageCount++
	m.audiences[i].LastUsed = m.now()
	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to save usage statistics: %w", err)
	}
	return nil
}

// GetMostUsed returns the most frequently opened audiences. Ties keep name
// order. A limit of zero or less returns all of them.
func (m *Manager) GetMostUsed(limit int) []Audience {
	sorted := m.GetAll()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}
