package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit/markup"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
)

const (
	defaultLatest = 5
	maxLatest     = 10
)

type ArticleProvider interface {
	FetchAll(ctx context.Context, sourceIDs []string, useCache bool) ([]model.Article, error)
}

// ViewCmdLatest /latest [n] отдает n самых свежих статей из кэша
func ViewCmdLatest(articles ArticleProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		all, err := articles.FetchAll(ctx, nil, true)
		if err != nil {
			return err
		}

		n := latestCount(update.Message.CommandArguments())
		if len(all) > n {
			all = all[:n]
		}

		if len(all) == 0 {
			return botkit.ReplyMarkdown(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Новостей пока нет"))
		}

		msgText := strings.Join(lo.Map(all, func(a model.Article, _ int) string {
			return formatArticle(a)
		}), "\n\n")

		return botkit.ReplyMarkdown(bot, update.Message.Chat.ID, msgText)
	}
}

func latestCount(args string) int {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n <= 0 {
		return defaultLatest
	}

	return min(n, maxLatest)
}

func formatArticle(a model.Article) string {
	title := markup.Bold(a.Title)
	if a.URL != "" {
		title = markup.Link(a.Title, a.URL)
	}

	return fmt.Sprintf(
		"%s\n%s · %s · %s",
		title,
		markup.EscapeForMarkdown(a.Source),
		markup.EscapeForMarkdown(string(a.Sentiment)),
		markup.EscapeForMarkdown(a.PublishedAt.UTC().Format("02.01.2006 15:04")),
	)
}
