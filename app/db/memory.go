package db

import (
	"sync"

	"github.com/rbhz/voca/app/voca"
)

// InMemoryStorage keeps words in a map
type InMemoryStorage struct {
	dictionary map[string]voca.Word
	mx         sync.RWMutex
}

func (d *InMemoryStorage) Get(spelling string) (voca.Word, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	word, ok := d.dictionary[spelling]
	if !ok {
		return voca.Word{}, ErrNotFound
	}
	return word, nil
}

func (d *InMemoryStorage) Save(spelling string, word voca.Word) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.dictionary[spelling] = word
	return nil
}

func (d *InMemoryStorage) List() (map[string]voca.Word, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	result := make(map[string]voca.Word, len(d.dictionary))
	for spelling, word := range d.dictionary {
		result[spelling] = word
	}
	return result, nil
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{dictionary: make(map[string]voca.Word)}
}
