// Package voca turns raw dictionary data into normalized Word records.
package voca

// Word holds a single resolved dictionary entry.
// PartsOfSpeech is nil for entries built from inline text. For entries built from
// a search response it is non-nil and Meanings[i] belongs to PartsOfSpeech[i].
type Word struct {
	PartsOfSpeech []string   `json:"partsOfSpeech" yaml:"partsOfSpeech,omitempty"`
	Meanings      [][]string `json:"meanings" yaml:"meanings"`
}

// NewWord creates Word with parts of speech present
func NewWord(partsOfSpeech []string, meanings [][]string) Word {
	if partsOfSpeech == nil {
		partsOfSpeech = []string{}
	}
	return Word{PartsOfSpeech: partsOfSpeech, Meanings: meanings}
}

// HasPartsOfSpeech reports whether parts of speech are present
func (w Word) HasPartsOfSpeech() bool {
	return w.PartsOfSpeech != nil
}

// Equal compares words field by field, order and grouping included.
func (w Word) Equal(other Word) bool {
	if w.HasPartsOfSpeech() != other.HasPartsOfSpeech() {
		return false
	}
	if !equalStrings(w.PartsOfSpeech, other.PartsOfSpeech) {
		return false
	}
	if len(w.Meanings) != len(other.Meanings) {
		return false
	}
	for i := range w.Meanings {
		if !equalStrings(w.Meanings[i], other.Meanings[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Entry is a spelling with its resolved word
type Entry struct {
	Spelling string `json:"spelling" yaml:"spelling"`
	Word     Word   `json:"word" yaml:"word"`
}

// Dictionary maps spellings to words. Spellings are case-sensitive and used verbatim.
// Set overwrites existing words; Entries keeps the order of first insertion.
type Dictionary struct {
	words map[string]Word
	order []string
}

// NewDictionary creates empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{words: make(map[string]Word)}
}

// Set stores word for the spelling, replacing any previous one
func (d *Dictionary) Set(spelling string, word Word) {
	if _, ok := d.words[spelling]; !ok {
		d.order = append(d.order, spelling)
	}
	d.words[spelling] = word
}

// Get returns word for the spelling
func (d *Dictionary) Get(spelling string) (Word, bool) {
	word, ok := d.words[spelling]
	return word, ok
}

// Len returns number of entries
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Entries returns all entries in insertion order
func (d *Dictionary) Entries() []Entry {
	entries := make([]Entry, 0, len(d.order))
	for _, spelling := range d.order {
		entries = append(entries, Entry{Spelling: spelling, Word: d.words[spelling]})
	}
	return entries
}
