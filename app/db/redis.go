package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rbhz/voca/app/voca"
)

const (
	prefixWord = "word:"
	keyWords   = "words"
)

type RedisStorage struct {
	db *redis.Client
}

// Get word from redis
func (s *RedisStorage) Get(spelling string) (voca.Word, error) {
	data, err := s.db.Get(context.Background(), prefixWord+spelling).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return voca.Word{}, ErrNotFound
		}
		return voca.Word{}, fmt.Errorf("fetching word: %w", err)
	}
	var word voca.Word
	if jerr := json.NewDecoder(bytes.NewBufferString(data)).Decode(&word); jerr != nil {
		return voca.Word{}, fmt.Errorf("unmarshal word: %w", jerr)
	}
	return word, nil
}

// Save word to redis and register its spelling in the words set
func (s *RedisStorage) Save(spelling string, word voca.Word) error {
	jdata, jerr := json.Marshal(word)
	if jerr != nil {
		return fmt.Errorf("marshal word: %w", jerr)
	}
	if err := s.db.Set(context.Background(), prefixWord+spelling, string(jdata), 0).Err(); err != nil {
		return fmt.Errorf("saving word: %w", err)
	}
	if err := s.db.SAdd(context.Background(), keyWords, spelling).Err(); err != nil {
		return fmt.Errorf("saving spelling: %w", err)
	}
	return nil
}

// List all words from redis
func (s *RedisStorage) List() (map[string]voca.Word, error) {
	spellings, err := s.db.SMembers(context.Background(), keyWords).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching spellings: %w", err)
	}
	result := make(map[string]voca.Word, len(spellings))
	if len(spellings) == 0 {
		return result, nil
	}
	keys := make([]string, 0, len(spellings))
	for _, spelling := range spellings {
		keys = append(keys, prefixWord+spelling)
	}
	values, err := s.db.MGet(context.Background(), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching words: %w", err)
	}
	for i, value := range values {
		if value == nil {
			// spelling registered but word key removed
			continue
		}
		jdata, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected word data for %q", spellings[i])
		}
		var word voca.Word
		if jerr := json.NewDecoder(bytes.NewBufferString(jdata)).Decode(&word); jerr != nil {
			return nil, fmt.Errorf("unmarshal word: %w", jerr)
		}
		result[spellings[i]] = word
	}
	return result, nil
}

// NewRedisStorage creates RedisStorage with given url
func NewRedisStorage(url string) (*RedisStorage, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStorage{db: rdb}, nil
}
