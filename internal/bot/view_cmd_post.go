package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit/markup"
	"github.com/kovalyov-valentin/cryptoflow/internal/notifier"
)

type Publisher interface {
	Post(ctx context.Context, language string) (notifier.Result, error)
}

// ViewCmdPost /post [язык] публикует свежую новость, с языком - сводку
func ViewCmdPost(publisher Publisher) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		language := strings.ToLower(strings.TrimSpace(update.Message.CommandArguments()))

		result, err := publisher.Post(ctx, language)
		if err != nil {
			return err
		}

		return botkit.ReplyMarkdown(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(result.Message))
	}
}
