package db

import (
	"os"
	"testing"

	"github.com/rbhz/voca/app/voca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func getBoltDB(t *testing.T) (*bolt.DB, func()) {
	tmpFile, err := os.CreateTemp("", "bolt_test")
	require.NoError(t, err)
	boltDB, err := bolt.Open(tmpFile.Name(), 0600, nil)
	require.NoError(t, err)
	return boltDB, func() {
		os.Remove(tmpFile.Name())
		boltDB.Close()
	}
}

func getStorage(t *testing.T) (*BoltStorage, func()) {
	boltDB, cleanup := getBoltDB(t)
	storage, err := NewBoltStorage(boltDB)
	require.NoError(t, err)
	return storage, cleanup
}

func getWord() voca.Word {
	return voca.NewWord(
		[]string{"동사", "명사"},
		[][]string{{"먹다", "집어삼키다"}, {"식사"}},
	)
}

func TestNewBoltStorage(t *testing.T) {
	boltDB, cleanup := getBoltDB(t)
	defer cleanup()
	_, err := NewBoltStorage(boltDB)
	require.NoError(t, err)
	err = boltDB.View(func(tx *bolt.Tx) error {
		assert.NotNil(t, tx.Bucket([]byte(bucketDictionary)))
		return nil
	})
	assert.NoError(t, err)
}

func TestBoltGet(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		require.NoError(t, storage.Save("eat", getWord()))
		word, err := storage.Get("eat")
		assert.NoError(t, err)
		assert.Equal(t, getWord(), word)
	})
	t.Run("inline word keeps absent parts of speech", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		inline := voca.ParseInline("a feline, a sly person")
		require.NoError(t, storage.Save("cat", inline))
		word, err := storage.Get("cat")
		assert.NoError(t, err)
		assert.False(t, word.HasPartsOfSpeech())
		assert.True(t, inline.Equal(word))
	})
	t.Run("not found", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		_, err := storage.Get("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("invalid JSON", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		require.NoError(t, storage.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(bucketDictionary)).Put([]byte("bad"), []byte("NOT_JSON"))
		}))
		_, err := storage.Get("bad")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestBoltSave(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		require.NoError(t, storage.Save("cat", voca.ParseInline("a feline")))
		require.NoError(t, storage.Save("cat", voca.ParseInline("a sly person")))
		word, err := storage.Get("cat")
		assert.NoError(t, err)
		assert.Equal(t, voca.ParseInline("a sly person"), word)
	})
}

func TestBoltList(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		require.NoError(t, storage.Save("eat", getWord()))
		require.NoError(t, storage.Save("cat", voca.ParseInline("pet")))
		words, err := storage.List()
		assert.NoError(t, err)
		assert.Equal(t, map[string]voca.Word{"eat": getWord(), "cat": voca.ParseInline("pet")}, words)
	})
	t.Run("empty", func(t *testing.T) {
		storage, cleanup := getStorage(t)
		defer cleanup()
		words, err := storage.List()
		assert.NoError(t, err)
		assert.Len(t, words, 0)
	})
}
