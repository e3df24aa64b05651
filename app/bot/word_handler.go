package bot

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/rbhz/voca/app/clients/naver"
	"github.com/rbhz/voca/app/db"
	"github.com/rbhz/voca/app/voca"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	unknownWordText = "Sorry, I don't know this word"
	failedWordText  = "Sorry, dictionary is unavailable right now. Try again later"
)

const wordTemplate = `<b>{{ html .Spelling }}</b>
{{- range .Groups }}
{{- if .Tag }}
<i>{{ html .Tag }}</i>
{{- end }}
{{- range $i, $m := .Meanings }}
{{ inc $i }}. {{ html $m }}
{{- end }}
{{- end }}
`

var wordTmpl = template.Must(template.New("word").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(wordTemplate))

type meaningGroup struct {
	Tag      string
	Meanings []string
}

// GetWordMessageText executes template with word data
func GetWordMessageText(spelling string, word voca.Word) string {
	groups := make([]meaningGroup, 0, len(word.Meanings))
	for i, meanings := range word.Meanings {
		group := meaningGroup{Meanings: meanings}
		if i < len(word.PartsOfSpeech) {
			group.Tag = word.PartsOfSpeech[i]
		}
		groups = append(groups, group)
	}
	buf := &bytes.Buffer{}
	data := map[string]interface{}{"Spelling": spelling, "Groups": groups}
	if err := wordTmpl.Execute(buf, data); err != nil {
		log.Error().Err(err).Str("word", spelling).Msg("failed to format word template")
	}
	return buf.String()
}

// WordHandler handles word requests
type WordHandler struct {
	neverPassthorugh
}

// Match returns true if message is a text
func (h WordHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Text != "" && !u.Message.IsCommand()
}

// Handle looks up the word and sends it to user
func (h WordHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	spelling := strings.TrimSpace(u.Message.Text)
	chatID := u.Message.Chat.ID
	word, found, err := h.getWord(ctx, spelling, b)
	if err != nil {
		log.Error().Err(err).Str("word", spelling).Msg("failed to get word data")
		_, _ = b.Send(tgbotapi.NewMessage(chatID, failedWordText))
		return
	}
	if !found {
		_, _ = b.Send(tgbotapi.NewMessage(chatID, unknownWordText))
		return
	}
	text := tgbotapi.NewMessage(chatID, GetWordMessageText(spelling, word))
	text.ParseMode = tgbotapi.ModeHTML
	_, _ = b.Send(text)
}

// getWord returns stored word, resolving and saving it when missing
func (h WordHandler) getWord(ctx context.Context, spelling string, b Bot) (voca.Word, bool, error) {
	word, err := b.DB().Get(spelling)
	if err == nil {
		return word, true, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return voca.Word{}, false, errors.Wrap(err, "fetch from db")
	}

	word, err = b.Resolver().Resolve(ctx, spelling, "")
	if err != nil {
		if errors.Is(err, naver.ErrNotFound) || errors.Is(err, voca.ErrInvalidResponseShape) {
			log.Info().Err(err).Str("word", spelling).Msg("unknown word")
			return voca.Word{}, false, nil
		}
		return voca.Word{}, false, errors.Wrap(err, "resolve word")
	}
	if len(word.Meanings) == 0 {
		return voca.Word{}, false, nil
	}
	if err := b.DB().Save(spelling, word); err != nil {
		return voca.Word{}, false, errors.Wrap(err, "save to db")
	}
	return word, true, nil
}
