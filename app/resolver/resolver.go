// Package resolver turns dictionary rows into resolved words.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rbhz/voca/app/voca"
	"github.com/rs/zerolog/log"
)

// ErrFetchFailure wraps errors returned by Fetcher
var ErrFetchFailure = errors.New("fetch failure")

// Fetcher fetches raw search response for a spelling
type Fetcher interface {
	Search(ctx context.Context, spelling string) ([]byte, error)
}

// Row is a single input entry. Empty Meanings means the word is looked up remotely.
type Row struct {
	Spelling string
	Meanings string
}

// RowSource yields rows until io.EOF
type RowSource interface {
	Next() (Row, error)
}

// Progress is notified after every processed row
type Progress interface {
	Add(int) error
}

// Policy defines what Run does when an entry fails to resolve
type Policy int

// failure policies
const (
	// PolicyAbort stops the run on the first failed entry
	PolicyAbort Policy = iota
	// PolicySkip logs failed entries and continues
	PolicySkip
)

// Stats summarizes a run
type Stats struct {
	Resolved int
	Inline   int
	Remote   int
	Failed   int
}

// Resolver resolves rows one by one
type Resolver struct {
	fetcher  Fetcher
	policy   Policy
	progress Progress
}

// Option configures Resolver
type Option func(*Resolver)

// WithPolicy sets failure policy
func WithPolicy(p Policy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithProgress sets progress reporter
func WithProgress(p Progress) Option {
	return func(r *Resolver) { r.progress = p }
}

// Resolve builds word from inline meanings, or from a remote search when meanings are empty
func (r *Resolver) Resolve(ctx context.Context, spelling string, meanings string) (voca.Word, error) {
	if meanings != "" {
		return voca.ParseInline(meanings), nil
	}
	body, err := r.fetcher.Search(ctx, spelling)
	if err != nil {
		return voca.Word{}, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	word, err := voca.ParseSearchResponse(body)
	if err != nil {
		return voca.Word{}, fmt.Errorf("parse search response: %w", err)
	}
	return word, nil
}

// Run resolves all rows sequentially and stores results in dict.
// With PolicyAbort the first failure is returned; entries resolved before it stay in dict.
func (r *Resolver) Run(ctx context.Context, rows RowSource, dict *voca.Dictionary) (Stats, error) {
	var stats Stats
	logger := log.With().Str("run", uuid.NewString()).Logger()
	logger.Info().Msg("resolve started")
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row: %w", err)
		}

		word, err := r.Resolve(ctx, row.Spelling, row.Meanings)
		r.reportProgress()
		if err != nil {
			if r.policy == PolicyAbort {
				return stats, fmt.Errorf("resolve %q: %w", row.Spelling, err)
			}
			stats.Failed++
			logger.Warn().Err(err).Str("word", row.Spelling).Msg("failed to resolve word, skipped")
			continue
		}
		if row.Meanings != "" {
			stats.Inline++
		} else {
			stats.Remote++
		}
		stats.Resolved++
		dict.Set(row.Spelling, word)
		logger.Debug().Str("word", row.Spelling).Int("groups", len(word.Meanings)).Msg("word resolved")
	}
	logger.Info().
		Int("resolved", stats.Resolved).
		Int("inline", stats.Inline).
		Int("remote", stats.Remote).
		Int("failed", stats.Failed).
		Msg("resolve finished")
	return stats, nil
}

func (r *Resolver) reportProgress() {
	if r.progress == nil {
		return
	}
	if err := r.progress.Add(1); err != nil {
		log.Warn().Err(err).Msg("failed to update progress")
	}
}

// NewResolver creates Resolver using fetcher for remote lookups
func NewResolver(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{fetcher: fetcher}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
