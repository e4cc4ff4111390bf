// Package storage persists engine settings and the opening book lines.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Storage keys
const (
	keySettings  = "settings"
	keyBookLines = "book/lines"
)

// Settings are the engine options that survive restarts.
type Settings struct {
	HashMB    int `json:"hash_mb"`
	BookDepth int `json:"book_depth"`
}

// Settings bounds, shared with the UCI options.
const (
	MinHashMB    = 1
	MaxHashMB    = 4096
	MaxBookDepth = 20
)

// Clamp returns s with every field moved into its bounds.
func (s Settings) Clamp() Settings {
	s.HashMB = min(max(s.HashMB, MinHashMB), MaxHashMB)
	s.BookDepth = min(max(s.BookDepth, 0), MaxBookDepth)
	return s
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		HashMB:    16,
		BookDepth: 8,
	}
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("storage opened")
	return &Storage{db: db}, nil
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*Storage, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return Open(dir)
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSettings saves the engine settings.
func (s *Storage) SaveSettings(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.set(keySettings, data)
}

// LoadSettings loads the engine settings, returning the defaults when none
// were saved.
func (s *Storage) LoadSettings() (Settings, error) {
	settings := DefaultSettings()
	err := s.get(keySettings, func(val []byte) error {
		return json.Unmarshal(val, &settings)
	})
	return settings, err
}

// SaveBookLines replaces the stored opening lines.
func (s *Storage) SaveBookLines(lines []string) error {
	return s.set(keyBookLines, []byte(strings.Join(lines, "\n")))
}

// LoadBookLines returns the stored opening lines, nil when none were saved.
func (s *Storage) LoadBookLines() ([]string, error) {
	var lines []string
	err := s.get(keyBookLines, func(val []byte) error {
		if len(val) > 0 {
			lines = strings.Split(string(val), "\n")
		}
		return nil
	})
	return lines, err
}

func (s *Storage) set(key string, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// get calls fn with the value under key, if there is one.
func (s *Storage) get(key string, fn func(val []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(fn)
	})
	if err != nil {
		return fmt.Errorf("storage: get %s: %w", key, err)
	}
	return nil
}
