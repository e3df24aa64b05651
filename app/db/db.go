// Package db stores resolved dictionary words.
package db

import (
	"errors"
	"fmt"

	"github.com/rbhz/voca/app/voca"
)

// ErrNotFound is returned when object not found
var ErrNotFound error = errors.New("not found")

// Storage defines method provided by database interfaces
type Storage interface {
	// Get word by spelling
	Get(string) (voca.Word, error)
	// Save word for spelling, replacing existing one
	Save(string, voca.Word) error
	// List returns all stored words by spelling
	List() (map[string]voca.Word, error)
}

// SaveDictionary saves all dictionary entries to storage
func SaveDictionary(s Storage, dict *voca.Dictionary) error {
	for _, entry := range dict.Entries() {
		if err := s.Save(entry.Spelling, entry.Word); err != nil {
			return fmt.Errorf("save %q: %w", entry.Spelling, err)
		}
	}
	return nil
}
