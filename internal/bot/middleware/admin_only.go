package middleware

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
)

// AdminOnly пускает к view только администраторов канала, куда постятся новости
func AdminOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if update.Message.From == nil {
			return nil
		}

		ok, err := isAdmin(bot, channelID, update.Message.From.ID)
		if err != nil {
			return err
		}

		if ok {
			return next(ctx, bot, update)
		}

		log.Printf("[WARN] user %d tried /%s without admin rights", update.Message.From.ID, update.Message.Command())

		_, err = bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "У вас нет прав для выполнения этой команды"))
		return err
	}
}

func isAdmin(bot *tgbotapi.BotAPI, channelID, userID int64) (bool, error) {
	// Канал не настроен, значит и админов нет
	if channelID == 0 {
		return false, nil
	}

	admins, err := bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
	})
	if err != nil {
		return false, err
	}

	for _, admin := range admins {
		if admin.User != nil && admin.User.ID == userID {
			return true, nil
		}
	}

	return false, nil
}
