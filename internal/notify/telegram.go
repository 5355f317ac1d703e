// Package notify pushes hunt lifecycle messages to players through the
// Telegram bot. Notifications are best-effort: failures are logged and
// never affect the triggering operation.
package notify

import (
	"fmt"

	"hunty_backend/internal/model"
	"hunty_backend/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier returns a disabled notifier when token is empty.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	if token == "" {
		return &TelegramNotifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) HuntCompleted(playerID int64, huntTitle string, score int) {
	n.send(playerID, fmt.Sprintf("You finished \"%s\" with %d points! Your rewards are on the way.", huntTitle, score))
}

func (n *TelegramNotifier) RewardSettled(playerID int64, record *model.DistributionRecord) {
	var text string
	switch {
	case record.XLMStatus == model.BranchSucceeded && record.NFTStatus == model.BranchSucceeded:
		text = "Your XLM reward and completion NFT have been delivered."
	case record.XLMStatus == model.BranchSucceeded:
		text = "Your XLM reward has been delivered."
	case record.NFTStatus == model.BranchSucceeded:
		text = "Your completion NFT has been delivered."
	case record.XLMStatus == model.BranchFailed || record.NFTStatus == model.BranchFailed:
		text = "Part of your reward could not be delivered yet. It will be retried."
	default:
		return
	}
	n.send(playerID, text)
}

func (n *TelegramNotifier) send(playerID int64, text string) {
	if n.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(playerID, text)
	if _, err := n.bot.Send(msg); err != nil {
		logger.Logger().Warn("failed to send telegram notification",
			zap.Int64("player_id", playerID), zap.Error(err))
	}
}
