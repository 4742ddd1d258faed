// Package favorites stores named PostgreSQL queries that load a document,
// so `lazyjson --pg-saved NAME` can reopen it later.
package favorites

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

	"github.com/rebeliceyang/lazyjson/internal/credentials"
	"github.com/rebeliceyang/lazyjson/internal/source"
)

// Favorite is a saved query. The connection never carries a password, that
// lives in the password store.
type Favorite struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Connection  source.ConnectionConfig `yaml:"connection"`
	Query       string                  `yaml:"query"`
	AllRows     bool                    `yaml:"all_rows,omitempty"`
	Tags        []string                `yaml:"tags,omitempty"`
	CreatedAt   time.Time               `yaml:"created_at"`
	UpdatedAt   time.Time               `yaml:"updated_at"`
	UsageCount  int                     `yaml:"usage_count"`
	LastUsed    time.Time               `yaml:"last_used,omitempty"`
}

// Passwords is the subset of credentials.PasswordStore the manager needs
type Passwords interface {
	Save(host string, port int, database, user, password string) error
	Get(host string, port int, database, user string) (string, error)
	Delete(host string, port int, database, user string) error
}

// Manager manages saved queries
type Manager struct {
	path      string
	favorites []Favorite
	passwords Passwords
}

// NewManager loads favorites.yaml from configDir. passwords may be nil, in
// which case passwords are dropped on save.
func NewManager(configDir string, passwords Passwords) (*Manager, error) {
	m := &Manager{
		path:      filepath.Join(configDir, "favorites.yaml"),
		favorites: []Favorite{},
		passwords: passwords,
	}

	if _, err := os.Stat(m.path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load favorites: %w", err)
		}
	}
	return m, nil
}

// Load loads favorites from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read favorites file: %w", err)
	}
	if err := yaml.Unmarshal(data, &m.favorites); err != nil {
		return fmt.Errorf("failed to parse favorites: %w", err)
	}
	return nil
}

// Save saves favorites to the YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.favorites)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write favorites file: %w", err)
	}
	return nil
}

// Add saves a new query. The connection password goes to the password store.
func (m *Manager) Add(name, description, query string, conn source.ConnectionConfig, allRows bool, tags []string) (*Favorite, error) {
	name = strings.TrimSpace(name)
	query = strings.TrimSpace(query)

	if name == "" {
		return nil, fmt.Errorf("favorite name cannot be empty")
	}
	if query == "" {
		return nil, fmt.Errorf("favorite query cannot be empty")
	}
	if _, ok := m.find(name); ok {
		return nil, fmt.Errorf("a favorite with the name '%s' already exists (names are case-insensitive)", name)
	}

	if conn.DSN != "" {
		parsed, err := source.ParseDSN(conn.DSN)
		if err != nil {
			return nil, err
		}
		conn = parsed
	}
	if conn.Password != "" && m.passwords != nil {
		if err := m.passwords.Save(conn.Host, conn.Port, conn.Database, conn.User, conn.Password); err != nil {
			return nil, err
		}
	}
	conn.Password = ""

	now := time.Now()
	favorite := Favorite{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Connection:  conn,
		Query:       query,
		AllRows:     allRows,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.favorites = append(m.favorites, favorite)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}
	return &favorite, nil
}

// Delete removes a favorite by name or ID along with its saved password
func (m *Manager) Delete(nameOrID string) error {
	i, ok := m.find(nameOrID)
	if !ok {
		return fmt.Errorf("favorite '%s' was not found", nameOrID)
	}
	fav := m.favorites[i]
	m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)

	if m.passwords != nil && !m.connectionShared(fav.Connection) {
		c := fav.Connection
		if err := m.passwords.Delete(c.Host, c.Port, c.Database, c.User); err != nil {
			return err
		}
	}
	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to save favorites after deletion: %w", err)
	}
	return nil
}

// Get returns a favorite by name (case-insensitive) or ID
func (m *Manager) Get(nameOrID string) (*Favorite, error) {
	i, ok := m.find(nameOrID)
	if !ok {
		return nil, fmt.Errorf("favorite '%s' was not found", nameOrID)
	}
	fav := m.favorites[i]
	return &fav, nil
}

// GetAll returns all favorites
func (m *Manager) GetAll() []Favorite {
	return m.favorites
}

// Search searches favorites by name, description, or tags
func (m *Manager) Search(query string) []Favorite {
	if query == "" {
		return m.favorites
	}

	query = strings.ToLower(query)
	var results []Favorite

	for _, fav := range m.favorites {
		if strings.Contains(strings.ToLower(fav.Name), query) ||
			strings.Contains(strings.ToLower(fav.Description), query) {
			results = append(results, fav)
			continue
		}
		for _, tag := range fav.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				results = append(results, fav)
				break
			}
		}
	}
	return results
}

// RecordUsage updates usage statistics for a favorite
func (m *Manager) RecordUsage(id string) error {
	for i, fav := range m.favorites {
		if fav.ID == id {
			m.favorites[i].UsageCount++
			m.favorites[i].LastUsed = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save usage statistics: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("favorite with ID '%s' was not found", id)
}

// GetMostUsed returns the most frequently used favorites
func (m *Manager) GetMostUsed(limit int) []Favorite {
	sorted := make([]Favorite, len(m.favorites))
	copy(sorted, m.favorites)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Source builds the document source of a favorite, with its password filled
// in from the password store
func (m *Manager) Source(fav *Favorite, timeout time.Duration) (*source.Postgres, error) {
	conn := fav.Connection
	if m.passwords != nil {
		password, err := m.passwords.Get(conn.Host, conn.Port, conn.Database, conn.User)
		switch {
		case err == nil:
			conn.Password = password
		case !errors.Is(err, credentials.ErrPasswordNotFound):
			return nil, err
		}
	}
	return &source.Postgres{
		Config:  conn,
		Query:   fav.Query,
		AllRows: fav.AllRows,
		Timeout: timeout,
	}, nil
}

func (m *Manager) find(nameOrID string) (int, bool) {
	for i, fav := range m.favorites {
		if fav.ID == nameOrID || strings.EqualFold(fav.Name, nameOrID) {
			return i, true
		}
	}
	return -1, false
}

// connectionShared reports whether another favorite still uses the server
// login of c
func (m *Manager) connectionShared(c source.ConnectionConfig) bool {
	for _, fav := range m.favorites {
		o := fav.Connection
		if o.Host == c.Host && o.Port == c.Port && o.Database == c.Database && o.User == c.User {
			return true
		}
	}
	return false
}
