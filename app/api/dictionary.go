package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rbhz/voca/app/db"
	"github.com/rbhz/voca/app/voca"
	"github.com/rs/zerolog/log"
)

// dictionaryService implements methods for dictionary API
type dictionaryService struct {
	storage db.Storage
}

// GetDictionary returns all stored words sorted by spelling
func (d dictionaryService) GetDictionary(w http.ResponseWriter, r *http.Request) {
	words, err := d.storage.List()
	if err != nil {
		log.Error().Err(err).Msg("failed to list dictionary")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	entries := make([]voca.Entry, 0, len(words))
	for spelling, word := range words {
		entries = append(entries, voca.Entry{Spelling: spelling, Word: word})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Spelling < entries[j].Spelling })
	writeJSON(w, entries)
}

// GetWord returns single word data
func (d dictionaryService) GetWord(w http.ResponseWriter, r *http.Request) {
	spelling := chi.URLParam(r, "word")
	word, err := d.storage.Get(spelling)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeText(w, http.StatusNotFound, "word not found")
			return
		}
		log.Error().Err(err).Str("word", spelling).Msg("failed to get word")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, word)
}

// UpdateWord replaces word data, admins only
func (d dictionaryService) UpdateWord(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		log.Error().Interface("user", r.Context().Value(ctxUserKey)).Msg("invalid user in context")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !user.Admin {
		writeText(w, http.StatusForbidden, "forbidden")
		return
	}
	var word voca.Word
	if err := json.NewDecoder(r.Body).Decode(&word); err != nil {
		writeText(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(word.Meanings) == 0 {
		writeText(w, http.StatusBadRequest, "word must have at least one meaning group")
		return
	}
	if word.HasPartsOfSpeech() && len(word.PartsOfSpeech) != len(word.Meanings) {
		writeText(w, http.StatusBadRequest, "parts of speech and meaning groups must have the same length")
		return
	}
	if !word.HasPartsOfSpeech() && len(word.Meanings) != 1 {
		writeText(w, http.StatusBadRequest, "word without parts of speech must have exactly one meaning group")
		return
	}
	spelling := chi.URLParam(r, "word")
	if err := d.storage.Save(spelling, word); err != nil {
		log.Error().Err(err).Str("word", spelling).Int64("user", user.ID).Msg("failed to save word")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	log.Info().Str("word", spelling).Int64("user", user.ID).Msg("word updated")
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	response, jerr := json.Marshal(v)
	if jerr != nil {
		log.Error().Err(jerr).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(response); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
