package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit/markup"
)

const startText = `Привет! Я собираю крипто новости из нескольких RSS лент.

/latest [n] - последние новости
/listsources - источники и состояние кэша
/refresh - перечитать ленты (только админы)
/post [язык] - опубликовать новость или сводку (только админы)`

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return botkit.ReplyMarkdown(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(startText))
	}
}
