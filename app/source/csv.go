// Package source reads dictionary rows from tabular files.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rbhz/voca/app/resolver"
)

// CSVSource reads rows of spelling and comma separated meanings.
// The first record is a header and is skipped.
type CSVSource struct {
	reader     *csv.Reader
	headerRead bool
	line       int
}

// Next returns next row or io.EOF
func (s *CSVSource) Next() (resolver.Row, error) {
	if !s.headerRead {
		s.headerRead = true
		if _, err := s.read(); err != nil {
			return resolver.Row{}, err
		}
	}
	record, err := s.read()
	if err != nil {
		return resolver.Row{}, err
	}
	row := resolver.Row{Spelling: record[0]}
	if len(record) > 1 {
		row.Meanings = record[1]
	}
	return row, nil
}

func (s *CSVSource) read() ([]string, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read csv record: %w", err)
	}
	s.line++
	if len(record) == 0 {
		return nil, fmt.Errorf("empty csv record at line %d", s.line)
	}
	return record, nil
}

// NewCSVSource creates CSVSource reading from r
func NewCSVSource(r io.Reader) *CSVSource {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return &CSVSource{reader: reader}
}

// Open opens CSV file at path
func Open(path string) (*CSVSource, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewCSVSource(f), f.Close, nil
}
