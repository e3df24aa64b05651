package db

import (
	"encoding/json"
	"fmt"

	"github.com/rbhz/voca/app/voca"
	bolt "go.etcd.io/bbolt"
)

const bucketDictionary = "Dictionary"

// BoltStorage implements storage interface for BoltDB
type BoltStorage struct {
	db *bolt.DB
}

// Get word from database
func (b *BoltStorage) Get(spelling string) (voca.Word, error) {
	var word voca.Word
	err := b.db.View(func(tx *bolt.Tx) error {
		jdata := tx.Bucket([]byte(bucketDictionary)).Get([]byte(spelling))
		if jdata == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(jdata, &word); err != nil {
			return fmt.Errorf("unmarshal word: %w", err)
		}
		return nil
	})
	if err != nil {
		return voca.Word{}, err
	}
	return word, nil
}

// Save word to database
func (b *BoltStorage) Save(spelling string, word voca.Word) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		jdata, err := json.Marshal(word)
		if err != nil {
			return fmt.Errorf("marshal word: %w", err)
		}
		if err := tx.Bucket([]byte(bucketDictionary)).Put([]byte(spelling), jdata); err != nil {
			return fmt.Errorf("put word: %w", err)
		}
		return nil
	})
}

// List all words from database
func (b *BoltStorage) List() (map[string]voca.Word, error) {
	result := make(map[string]voca.Word)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDictionary)).ForEach(func(k, v []byte) error {
			var word voca.Word
			if err := json.Unmarshal(v, &word); err != nil {
				return fmt.Errorf("unmarshal word %q: %w", k, err)
			}
			result[string(k)] = word
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NewBoltStorage creates BoltStorage instance and initialize buckets
func NewBoltStorage(db *bolt.DB) (*BoltStorage, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketDictionary))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}
