package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit/markup"
	"github.com/kovalyov-valentin/cryptoflow/internal/cache"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
)

type SourceLister interface {
	All() []model.Source
}

type CacheStats interface {
	Stats() []cache.SourceStats
}

func ViewCmdListSources(lister SourceLister, stats CacheStats) botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		var (
			sources = lister.All()
			byID    = lo.KeyBy(stats.Stats(), func(s cache.SourceStats) string {
				return s.Source
			})
			// Складываем сформатированные тексты с метаинформацией об источниках
			sourceInfos = lo.Map(sources, func(source model.Source, _ int) string {
				return formatSource(source, byID[source.ID])
			})
			msgText = fmt.Sprintf(
				"Список источников \\(всего %d\\):\n\n%s",
				len(sources),
				strings.Join(sourceInfos, "\n\n"),
			)
		)

		return botkit.ReplyMarkdown(bot, update.Message.Chat.ID, msgText)
	}
}

// Вывод форматированной информации об источнике
func formatSource(source model.Source, stats cache.SourceStats) string {
	status := "выключен"
	if source.Active {
		status = "активен"
	}

	cached := "нет"
	if stats.Cached {
		cached = fmt.Sprintf("%d статей, возраст %s", stats.Articles, time.Duration(stats.AgeMs)*time.Millisecond)
		if !stats.Fresh {
			cached += ", устарел"
		}
	}

	return fmt.Sprintf(
		"🌐 %s\nID: %s\nСтатус: %s\nКэш: %s\nURL фида: %s",
		markup.Bold(source.Name),
		markup.Code(source.ID),
		markup.EscapeForMarkdown(status),
		markup.EscapeForMarkdown(cached),
		markup.EscapeForMarkdown(source.FeedURL),
	)
}
