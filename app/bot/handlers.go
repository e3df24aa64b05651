package bot

import (
	"github.com/rbhz/voca/app/db"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot describes bot for handlers
type Bot interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	DB() db.Storage
	Resolver() Resolver
}

// neverPassthorugh implements Passthrough with always false
type neverPassthorugh struct{}

// Passthrough always returns false
func (h neverPassthorugh) Passthrough(u tgbotapi.Update) bool {
	return false
}
