package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatSender is the part of *tgbotapi.BotAPI the notifier needs.
type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a one-line summary of each event to an operations chat.
type TelegramNotifier struct {
	bot    chatSender
	chatID int64
	only   map[EventType]bool
}

// NewTelegramNotifier connects to the Bot API with token. When types is
// non-empty only those events are posted.
func NewTelegramNotifier(token string, chatID int64, types ...EventType) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, types...), nil
}

func newTelegramNotifier(bot chatSender, chatID int64, types ...EventType) *TelegramNotifier {
	only := make(map[EventType]bool, len(types))
	for _, t := range types {
		only[t] = true
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, only: only}
}

func (n *TelegramNotifier) Notify(_ context.Context, ev Event) error {
	if len(n.only) > 0 && !n.only[ev.Type] {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, formatEvent(ev))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatEvent(ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] trade %s -> %s", ev.Type, ev.TradeID, ev.Status)
	if ev.Trade != nil {
		fmt.Fprintf(&b, "\n%s: %s x %s (buyer %s, supplier %s)",
			ev.Trade.Commodity, ev.Trade.Quantity, ev.Trade.UnitPrice, ev.Trade.BuyerID, ev.Trade.SupplierID)
	}
	return b.String()
}
