package resolver

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rbhz/voca/app/voca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eatResponse = `{"searchResultMap":{"searchResultListMap":{"WORD":{"items":[` +
	`{"meansCollector":[{"partOfSpeech":"verb","means":[{"value":"to eat"}]}]}]}}}}`

// mapFetcher returns responses by spelling and fails for unknown ones
type mapFetcher struct {
	responses map[string]string
	calls     []string
}

func (f *mapFetcher) Search(_ context.Context, spelling string) ([]byte, error) {
	f.calls = append(f.calls, spelling)
	body, ok := f.responses[spelling]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return []byte(body), nil
}

type sliceSource struct {
	rows []Row
	err  error
}

func (s *sliceSource) Next() (Row, error) {
	if len(s.rows) == 0 {
		if s.err != nil {
			return Row{}, s.err
		}
		return Row{}, io.EOF
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, nil
}

type countingProgress struct {
	count int
}

func (p *countingProgress) Add(n int) error {
	p.count += n
	return nil
}

func TestResolve(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		fetcher := &mapFetcher{}
		r := NewResolver(fetcher)
		word, err := r.Resolve(context.TODO(), "cat", "a feline, a sly person")
		require.NoError(t, err)
		assert.Equal(t, voca.Word{Meanings: [][]string{{"a feline", "a sly person"}}}, word)
		assert.Empty(t, fetcher.calls)
	})
	t.Run("remote", func(t *testing.T) {
		fetcher := &mapFetcher{responses: map[string]string{"eat": eatResponse}}
		r := NewResolver(fetcher)
		word, err := r.Resolve(context.TODO(), "eat", "")
		require.NoError(t, err)
		assert.Equal(t, voca.NewWord([]string{"verb"}, [][]string{{"to eat"}}), word)
		assert.Equal(t, []string{"eat"}, fetcher.calls)
	})
	t.Run("fetch failure", func(t *testing.T) {
		r := NewResolver(&mapFetcher{})
		_, err := r.Resolve(context.TODO(), "eat", "")
		assert.ErrorIs(t, err, ErrFetchFailure)
	})
	t.Run("invalid shape", func(t *testing.T) {
		r := NewResolver(&mapFetcher{responses: map[string]string{"eat": `{"searchResultMap":{}}`}})
		_, err := r.Resolve(context.TODO(), "eat", "")
		assert.ErrorIs(t, err, voca.ErrInvalidResponseShape)
		assert.NotErrorIs(t, err, ErrFetchFailure)
	})
}

func TestRun(t *testing.T) {
	t.Run("mixed rows", func(t *testing.T) {
		fetcher := &mapFetcher{responses: map[string]string{"eat": eatResponse}}
		progress := &countingProgress{}
		r := NewResolver(fetcher, WithProgress(progress))
		dict := voca.NewDictionary()
		stats, err := r.Run(context.TODO(), &sliceSource{rows: []Row{
			{Spelling: "cat", Meanings: "a feline, a sly person"},
			{Spelling: "eat"},
		}}, dict)
		require.NoError(t, err)
		assert.Equal(t, Stats{Resolved: 2, Inline: 1, Remote: 1}, stats)
		assert.Equal(t, 2, progress.count)
		expected := []voca.Entry{
			{Spelling: "cat", Word: voca.ParseInline("a feline, a sly person")},
			{Spelling: "eat", Word: voca.NewWord([]string{"verb"}, [][]string{{"to eat"}})},
		}
		assert.Equal(t, expected, dict.Entries())
	})
	t.Run("overwrite", func(t *testing.T) {
		r := NewResolver(&mapFetcher{})
		dict := voca.NewDictionary()
		_, err := r.Run(context.TODO(), &sliceSource{rows: []Row{
			{Spelling: "cat", Meanings: "a feline"},
			{Spelling: "cat", Meanings: "a sly person"},
		}}, dict)
		require.NoError(t, err)
		word, ok := dict.Get("cat")
		require.True(t, ok)
		assert.Equal(t, voca.ParseInline("a sly person"), word)
		assert.Equal(t, 1, dict.Len())
	})
	t.Run("abort on failure", func(t *testing.T) {
		fetcher := &mapFetcher{}
		r := NewResolver(fetcher)
		dict := voca.NewDictionary()
		stats, err := r.Run(context.TODO(), &sliceSource{rows: []Row{
			{Spelling: "cat", Meanings: "a feline"},
			{Spelling: "unknown"},
			{Spelling: "dog", Meanings: "a canine"},
		}}, dict)
		assert.ErrorIs(t, err, ErrFetchFailure)
		assert.Contains(t, err.Error(), `"unknown"`)
		assert.Equal(t, Stats{Resolved: 1, Inline: 1}, stats)
		_, ok := dict.Get("dog")
		assert.False(t, ok)
	})
	t.Run("skip on failure", func(t *testing.T) {
		fetcher := &mapFetcher{responses: map[string]string{"bad": `[]`}}
		r := NewResolver(fetcher, WithPolicy(PolicySkip))
		dict := voca.NewDictionary()
		stats, err := r.Run(context.TODO(), &sliceSource{rows: []Row{
			{Spelling: "unknown"},
			{Spelling: "bad"},
			{Spelling: "dog", Meanings: "a canine"},
		}}, dict)
		require.NoError(t, err)
		assert.Equal(t, Stats{Resolved: 1, Inline: 1, Failed: 2}, stats)
		assert.Equal(t, []voca.Entry{{Spelling: "dog", Word: voca.ParseInline("a canine")}}, dict.Entries())
	})
	t.Run("source error", func(t *testing.T) {
		r := NewResolver(&mapFetcher{})
		_, err := r.Run(context.TODO(), &sliceSource{err: errors.New("broken file")}, voca.NewDictionary())
		assert.Error(t, err)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewResolver(&mapFetcher{})
		dict := voca.NewDictionary()
		_, err := r.Run(ctx, &sliceSource{rows: []Row{{Spelling: "cat", Meanings: "pet"}}}, dict)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, dict.Len())
	})
}
