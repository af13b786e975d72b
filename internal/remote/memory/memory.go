// Package memory implements the remote gateway against in-process tables.
// It powers tests and offline use, and mirrors the hosted store's behavior:
// payments rewrite the card balance server-side, card deletion does not
// cascade to transactions.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/promptpay"
	"cardtrack/internal/remote"
)

type Gateway struct {
	mu       sync.Mutex
	cards    []core.Card
	txns     []core.Transaction
	payments []core.PaymentIntent
	nextID   int
	notifier notify.Notifier
	busy     *remote.BusyFlag
}

var _ remote.Invoker = (*Gateway)(nil)

// New creates a gateway seeded with the given records.
func New(cards []core.Card, txns []core.Transaction) *Gateway {
	return &Gateway{
		cards:    append([]core.Card(nil), cards...),
		txns:     append([]core.Transaction(nil), txns...),
		nextID:   1,
		notifier: notify.LogNotifier{},
	}
}

// SetNotifier routes failure reports somewhere other than the log.
func (g *Gateway) SetNotifier(n notify.Notifier) {
	if n != nil {
		g.notifier = n
	}
}

// SetBusy makes the gateway raise the given flag for the duration of each
// call, matching the remote backends.
func (g *Gateway) SetBusy(b *remote.BusyFlag) {
	g.busy = b
}

// Payments returns every settlement recorded so far.
func (g *Gateway) Payments() []core.PaymentIntent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.PaymentIntent(nil), g.payments...)
}

func (g *Gateway) Invoke(ctx context.Context, action string, payload any) json.RawMessage {
	g.busy.Set(true)
	defer g.busy.Set(false)

	data, err := g.dispatch(action, payload)
	if err != nil {
		slog.WarnContext(ctx, "Memory gateway rejected action", "action", action, "error", err)
		g.notifier.Notify(ctx, "Error", err.Error(), notify.SeverityError)
		return nil
	}
	return data
}

func (g *Gateway) dispatch(action string, payload any) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch action {
	case remote.ActionGetCards:
		return marshal(g.cards)

	case remote.ActionGetTransactions:
		return marshal(g.txns)

	case remote.ActionAddCard:
		var c core.Card
		if err := decode(payload, &c); err != nil {
			return nil, err
		}
		if c.CardID == "" {
			c.CardID = fmt.Sprintf("C%03d", g.nextID)
			g.nextID++
		}
		g.cards = append(g.cards, c)
		return marshal(c)

	case remote.ActionAddTransaction:
		var t core.Transaction
		if err := decode(payload, &t); err != nil {
			return nil, err
		}
		if t.TransactionID == "" {
			t.TransactionID = fmt.Sprintf("T%03d", g.nextID)
			g.nextID++
		}
		g.txns = append(g.txns, t)
		return marshal(t)

	case remote.ActionDeleteCard:
		var req remote.DeleteCardRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		for i, c := range g.cards {
			if c.CardID == req.CardID {
				// Transactions referencing the card stay behind.
				g.cards = append(g.cards[:i], g.cards[i+1:]...)
				return json.RawMessage(`{}`), nil
			}
		}
		return nil, fmt.Errorf("card %s not found", req.CardID)

	case remote.ActionGeneratePromptPay:
		var req remote.PromptPayRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		if req.Phone == "" {
			return nil, fmt.Errorf("invalid payment parameters")
		}
		return marshal(remote.PromptPayData{
			Payload: promptpay.Payload(req.Phone, req.Amount),
		})

	case remote.ActionAddPayment:
		var intent core.PaymentIntent
		if err := decode(payload, &intent); err != nil {
			return nil, err
		}
		for i := range g.cards {
			if g.cards[i].CardID == intent.CardID {
				g.cards[i].CurrentBalance.Cents -= intent.Amount.Cents
				g.payments = append(g.payments, intent)
				return marshal(g.cards[i])
			}
		}
		return nil, fmt.Errorf("card %s not found", intent.CardID)

	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// decode round-trips the payload through JSON, the same coercion path the
// wire gateways use.
func decode(payload, into any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return b, nil
}
