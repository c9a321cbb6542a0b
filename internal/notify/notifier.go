// Package notify delivers trade lifecycle events to interested parties.
//
// The lifecycle only depends on the Notifier interface. Delivery guarantees
// (retries, fan-out, persistence) belong to the concrete sinks.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/logger"
	"golang.org/x/sync/errgroup"
)

// EventType names a lifecycle event.
type EventType string

const (
	EventTradeCreated      EventType = "trade.created"
	EventDepositMade       EventType = "trade.deposit_made"
	EventSupplierConfirmed EventType = "trade.confirmed"
	EventDocumentsUploaded EventType = "trade.documents_uploaded"
	EventDocumentsVerified EventType = "trade.verified"
	EventFinalPaymentMade  EventType = "trade.final_paid"
	EventTradeClaimed      EventType = "trade.claimed"
	EventTradeCancelled    EventType = "trade.cancelled"
)

// RecipientAdmins addresses every platform administrator.
const RecipientAdmins = "admins"

// Event is a single lifecycle notification.
//
// Trade is a snapshot taken after the transition; the key code is never
// included in events.
type Event struct {
	Type       EventType     `json:"type"`
	TradeID    string        `json:"trade_id"`
	Status     models.Status `json:"status"`
	Trade      *models.Trade `json:"trade,omitempty"`
	Recipients []string      `json:"recipients"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewEvent builds an event for t addressed to recipients.
func NewEvent(typ EventType, t *models.Trade, recipients ...string) Event {
	snap := t.Clone()
	if snap != nil {
		snap.KeyCode = ""
	}
	ev := Event{
		Type:       typ,
		Trade:      snap,
		Recipients: recipients,
		OccurredAt: time.Now().UTC(),
	}
	if snap != nil {
		ev.TradeID = snap.ID
		ev.Status = snap.Status
	}
	return ev
}

// Notifier receives lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// LogNotifier writes every event to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev Event) error {
	l := logger.For("notify")
	l.Info().
		Str("event", string(ev.Type)).
		Str("trade_id", ev.TradeID).
		Str("status", string(ev.Status)).
		Strs("recipients", ev.Recipients).
		Msg("lifecycle event")
	return nil
}

// Multi fans an event out to several notifiers concurrently. Every sink is
// attempted; failures are joined into one error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, n := range m {
		i, n := i, n
		g.Go(func() error {
			errs[i] = n.Notify(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
