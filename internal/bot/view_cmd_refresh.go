package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit/markup"
)

// ViewCmdRefresh перечитывает все ленты в обход свежего кэша.
// Если лента лежит, кэш источника остается и отдается как есть.
func ViewCmdRefresh(articles ArticleProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		count, err := refreshFeeds(ctx, articles)
		if err != nil {
			return err
		}

		return botkit.ReplyMarkdown(
			bot,
			update.Message.Chat.ID,
			markup.EscapeForMarkdown(fmt.Sprintf("Ленты обновлены, статей: %d", count)),
		)
	}
}

func refreshFeeds(ctx context.Context, articles ArticleProvider) (int, error) {
	all, err := articles.FetchAll(ctx, nil, false)
	if err != nil {
		return 0, err
	}

	return len(all), nil
}
