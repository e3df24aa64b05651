package voca

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidResponseShape is returned when a search response can't be navigated
// down to the parts of speech collector.
var ErrInvalidResponseShape = errors.New("invalid search response shape")

// searchResultPath leads from the response root to the items array
var searchResultPath = []string{"searchResultMap", "searchResultListMap", "WORD", "items"}

// ParseSearchResponse builds Word from a dictionary search response body.
// Items without a part of speech get an empty tag, so tags and meaning groups
// always have the same length. Missing or malformed meanings are skipped.
func ParseSearchResponse(body []byte) (Word, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return Word{}, fmt.Errorf("%w: %v", ErrInvalidResponseShape, err)
	}
	collector, err := meansCollector(root)
	if err != nil {
		return Word{}, err
	}

	partsOfSpeech := make([]string, 0, len(collector))
	meanings := make([][]string, 0, len(collector))
	for _, item := range collector {
		pos, _ := stringField(item, "partOfSpeech")
		partsOfSpeech = append(partsOfSpeech, pos)
		meanings = append(meanings, itemMeanings(item))
	}
	return NewWord(partsOfSpeech, meanings), nil
}

func meansCollector(root interface{}) ([]interface{}, error) {
	node := root
	for _, key := range searchResultPath {
		next, ok := field(node, key)
		if !ok {
			return nil, fmt.Errorf("%w: %q is missing", ErrInvalidResponseShape, key)
		}
		node = next
	}
	items, ok := node.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidResponseShape)
	}
	collector, ok := field(items[0], "meansCollector")
	if !ok {
		return nil, fmt.Errorf("%w: %q is missing", ErrInvalidResponseShape, "meansCollector")
	}
	parts, ok := collector.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an array", ErrInvalidResponseShape, "meansCollector")
	}
	return parts, nil
}

func itemMeanings(item interface{}) []string {
	result := []string{}
	value, ok := field(item, "means")
	if !ok {
		return result
	}
	means, ok := value.([]interface{})
	if !ok {
		return result
	}
	for _, mean := range means {
		if text, ok := stringField(mean, "value"); ok {
			result = append(result, Normalize(text))
		}
	}
	return result
}

// field returns object member by key; false if node is not an object or key is absent
func field(node interface{}, key string) (interface{}, bool) {
	obj, ok := node.(map[string]interface{})
	if !ok {
		return nil, false
	}
	value, ok := obj[key]
	return value, ok
}

func stringField(node interface{}, key string) (string, bool) {
	value, ok := field(node, key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}
