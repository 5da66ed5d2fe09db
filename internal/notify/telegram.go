package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gomboskr/k2barber/internal/events"
	"github.com/gomboskr/k2barber/internal/models"
)

// TelegramNotifier posts booking notifications to the barber's admin
// chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Telegram Bot API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, event events.Event) error {
	msg := tgbotapi.NewMessage(n.chatID, formatMessage(event))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatMessage(event events.Event) string {
	b := event.Booking
	var header string
	switch event.Type {
	case events.BookingCreated:
		header = "Új foglalás"
	case events.BookingUpdated:
		header = "Foglalás módosítva"
	case events.BookingCancelled:
		header = "Foglalás törölve"
	case events.BookingReminder:
		header = "Holnapi foglalás"
	default:
		header = "Foglalás"
	}

	price := models.ServicePrice(b.ServiceKind)
	text := fmt.Sprintf("%s #%d\n%s %s\n%s (%d Ft)\n%s\n%s\n%s",
		header, b.ID, b.Date, b.Time, b.Service, price,
		b.CustomerName, b.Phone, b.Email)
	if b.Notes != "" {
		text += "\nMegjegyzés: " + b.Notes
	}
	return text
}
