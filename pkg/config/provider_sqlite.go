package config

import (
	"database/sql"
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"
	_ "modernc.org/sqlite"
)

// ErrConfigNotFound is returned when no configuration is stored under a name.
var ErrConfigNotFound = errors.New("configuration not found")

const configSchema = `
CREATE TABLE IF NOT EXISTS configs (
	name       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SQLiteProvider implements ConfigProvider for named configurations stored
// in a SQLite database. Each configuration is kept as a YAML document.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
	name   string
	config *ConfigData
}

// NewSQLiteProvider opens the database at dbPath and serves the
// configuration stored under name.
func NewSQLiteProvider(dbPath, name string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(configSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create configs table: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
		name:   name,
	}, nil
}

// LoadConfig loads and validates the named configuration.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM configs WHERE name = ?`, s.name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q in %s", ErrConfigNotFound, s.name, s.dbPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration %q: %w", s.name, err)
	}

	config, err := Parse([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", s.name, err)
	}
	s.config = config
	return config, nil
}

// GetStorageConfig returns storage configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	if s.config == nil {
		if _, err := s.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &s.config.Storage, nil
}

// GetRESTConfig returns the REST server configuration, or nil when the
// server is not configured.
func (s *SQLiteProvider) GetRESTConfig() (*RESTServerData, error) {
	if s.config == nil {
		if _, err := s.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return s.config.REST, nil
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig validates configData and stores it under the provider's name,
// replacing any previous version.
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := configData.Validate(); err != nil {
		return err
	}
	doc, err := yaml.Marshal(configData)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	const query = `INSERT INTO configs (name, document) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = datetime('now')`
	if _, err := s.db.Exec(query, s.name, string(doc)); err != nil {
		return fmt.Errorf("failed to save configuration %q: %w", s.name, err)
	}
	s.config = nil
	return nil
}

// ListConfigs returns the names of every stored configuration.
func (s *SQLiteProvider) ListConfigs() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteConfig removes the named configuration.
func (s *SQLiteProvider) DeleteConfig(name string) error {
	result, err := s.db.Exec(`DELETE FROM configs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete configuration %q: %w", name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	if name == s.name {
		s.config = nil
	}
	return nil
}
