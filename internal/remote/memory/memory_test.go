package memory

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/remote"
)

type captureNotifier struct {
	messages []string
}

func (c *captureNotifier) Notify(_ context.Context, _, message string, _ notify.Severity) {
	c.messages = append(c.messages, message)
}

func seedCard(id string, balance int64) core.Card {
	return core.Card{
		CardID:         id,
		CardName:       "Card " + id,
		BankName:       "KBank",
		CurrentBalance: core.Money{Cents: balance},
		CreditLimit:    core.Money{Cents: 500000},
		DueDate:        5,
	}
}

func TestAddCardAssignsID(t *testing.T) {
	g := New(nil, nil)
	ctx := context.Background()

	data := g.Invoke(ctx, remote.ActionAddCard, core.Card{CardName: "Everyday"})
	if data == nil {
		t.Fatal("addCard failed")
	}
	var added core.Card
	if err := json.Unmarshal(data, &added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if added.CardID == "" {
		t.Fatal("expected an assigned CardID")
	}

	var cards []core.Card
	if err := json.Unmarshal(g.Invoke(ctx, remote.ActionGetCards, nil), &cards); err != nil {
		t.Fatalf("decode cards: %v", err)
	}
	if len(cards) != 1 || cards[0].CardID != added.CardID {
		t.Fatalf("unexpected card list: %+v", cards)
	}
}

func TestAddPaymentRewritesBalance(t *testing.T) {
	g := New([]core.Card{seedCard("C1", 100000)}, nil)
	ctx := context.Background()

	data := g.Invoke(ctx, remote.ActionAddPayment, core.PaymentIntent{
		CardID: "C1",
		Amount: core.Money{Cents: 40000},
	})
	if data == nil {
		t.Fatal("addPayment failed")
	}
	var updated core.Card
	if err := json.Unmarshal(data, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.CurrentBalance.Cents != 60000 {
		t.Fatalf("balance = %d, want 60000", updated.CurrentBalance.Cents)
	}
	if got := g.Payments(); len(got) != 1 {
		t.Fatalf("payments = %d, want 1", len(got))
	}
}

func TestDeleteCardKeepsTransactions(t *testing.T) {
	txn := core.Transaction{TransactionID: "T1", CardID: "C1", Description: "Lunch"}
	g := New([]core.Card{seedCard("C1", 1000)}, []core.Transaction{txn})
	ctx := context.Background()

	if g.Invoke(ctx, remote.ActionDeleteCard, remote.DeleteCardRequest{CardID: "C1"}) == nil {
		t.Fatal("deleteCard failed")
	}

	var cards []core.Card
	if err := json.Unmarshal(g.Invoke(ctx, remote.ActionGetCards, nil), &cards); err != nil {
		t.Fatalf("decode cards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %+v", cards)
	}

	var txns []core.Transaction
	if err := json.Unmarshal(g.Invoke(ctx, remote.ActionGetTransactions, nil), &txns); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txns) != 1 || txns[0].CardID != "C1" {
		t.Fatalf("orphaned transaction should survive, got %+v", txns)
	}
}

func TestGeneratePromptPay(t *testing.T) {
	g := New(nil, nil)
	ctx := context.Background()

	data := g.Invoke(ctx, remote.ActionGeneratePromptPay, remote.PromptPayRequest{
		Phone:  "0812345678",
		Amount: core.Money{Cents: 50000},
	})
	if data == nil {
		t.Fatal("generatePromptPay failed")
	}
	var res remote.PromptPayData
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(res.Payload, "000201") {
		t.Fatalf("unexpected payload %q", res.Payload)
	}
}

func TestFailuresNotifyAndReturnNil(t *testing.T) {
	g := New(nil, nil)
	n := &captureNotifier{}
	g.SetNotifier(n)
	ctx := context.Background()

	if got := g.Invoke(ctx, remote.ActionAddPayment, core.PaymentIntent{CardID: "missing"}); got != nil {
		t.Fatalf("expected nil for unknown card, got %s", got)
	}
	if got := g.Invoke(ctx, "settleEverything", nil); got != nil {
		t.Fatalf("expected nil for unknown action, got %s", got)
	}
	if len(n.messages) != 2 {
		t.Fatalf("expected 2 notifications, got %v", n.messages)
	}
}

type busyWatcher struct {
	flag     *remote.BusyFlag
	observed bool
}

func (w *busyWatcher) Notify(context.Context, string, string, notify.Severity) {
	w.observed = w.flag.Busy()
}

func TestBusyFlagToggledAroundCalls(t *testing.T) {
	g := New(nil, nil)
	busy := remote.NewBusyFlag()
	g.SetBusy(busy)
	watcher := &busyWatcher{flag: busy}
	g.SetNotifier(watcher)
	ctx := context.Background()

	// The notifier runs inside Invoke, so a failing action lets us observe
	// the flag mid-call.
	if got := g.Invoke(ctx, "settleEverything", nil); got != nil {
		t.Fatalf("expected nil for unknown action, got %s", got)
	}
	if !watcher.observed {
		t.Fatal("busy flag should be raised while a call is in flight")
	}
	if busy.Busy() {
		t.Fatal("busy flag should be cleared after the call returns")
	}
}
