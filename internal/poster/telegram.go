package poster

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram постит в канал от имени бота
type Telegram struct {
	bot       *tgbotapi.BotAPI
	channelID int64
}

func NewTelegram(bot *tgbotapi.BotAPI, channelID int64) (*Telegram, error) {
	if bot == nil || channelID == 0 {
		return nil, errors.Join(ErrMissingCredentials, errors.New("telegram bot token and channel id are required"))
	}

	return &Telegram{bot: bot, channelID: channelID}, nil
}

func (t *Telegram) Post(_ context.Context, text string) (string, error) {
	sent, err := t.bot.Send(tgbotapi.NewMessage(t.channelID, text))
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			postErr := classify(apiErr.Code, err)
			postErr.RetryAfter = time.Duration(apiErr.RetryAfter) * time.Second
			return "", postErr
		}

		return "", &PostError{Kind: KindServer, Err: err}
	}

	return strconv.Itoa(sent.MessageID), nil
}
