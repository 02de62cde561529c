package botkit

import (
	"context"
	"log"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Сколько живет обработка одной команды, /refresh ходит во все ленты через общий лимит
const defaultUpdateTimeout = 30 * time.Second

// ViewFunc реагирует на одну команду.
// Update это любой эвент от телеграма, bot это клиент, через который отвечаем
type ViewFunc func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Команда -> view
	cmdViews map[string]ViewFunc

	updateTimeout time.Duration
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{
		api:           api,
		cmdViews:      make(map[string]ViewFunc),
		updateTimeout: defaultUpdateTimeout,
	}
}

// RegisterCmdView регистрирует view для команды без слэша, например "latest"
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[strings.TrimPrefix(cmd, "/")] = view
}

// Commands зарегистрированные команды по алфавиту
func (b *Bot) Commands() []string {
	cmds := make([]string, 0, len(b.cmdViews))
	for cmd := range b.cmdViews {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)

	return cmds
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, b.updateTimeout)
			b.handleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleUpdate роутит команду на view, паника во view не должна ронять бота
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered: %v\n%s", p, string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	view, ok := b.cmdViews[update.Message.Command()]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		log.Printf("[ERROR] failed to handle /%s: %v", update.Message.Command(), err)

		if _, err := b.api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			log.Printf("[ERROR] failed to send message: %v", err)
		}
	}
}

// ReplyMarkdown отвечает в чат текстом в разметке MarkdownV2, текст должен быть уже экранирован
func ReplyMarkdown(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdownV2
	reply.DisableWebPagePreview = true

	_, err := bot.Send(reply)
	return err
}
