package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/promptpay"
	"cardtrack/internal/remote"
)

type recordingCodes struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recordingCodes) RenderCode(_ context.Context, payload string) {
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
}

func newTestWorkflow(gw remote.Invoker, codes CodeRenderer) *PaymentWorkflow {
	store := NewStore(gw)
	coord := NewCoordinator(gw, store, notify.LogNotifier{}, notify.ApproveAll{})
	w := NewPaymentWorkflow(gw, coord, codes)
	w.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }
	return w
}

func TestRequestQuoteHoldsIntent(t *testing.T) {
	gw := newStubGateway()
	gw.respond(remote.ActionGeneratePromptPay, remote.PromptPayData{Payload: "00020101QUOTE"})

	codes := &recordingCodes{}
	w := newTestWorkflow(gw, codes)
	w.RequestQuote(context.Background(), "C1", core.Money{Cents: 50000}, "0812345678")

	if w.State() != StateQuoted {
		t.Fatalf("state = %s, want quoted", w.State())
	}
	intent, ok := w.Pending()
	if !ok {
		t.Fatal("expected a pending intent")
	}
	if intent.CardID != "C1" || intent.Amount.Cents != 50000 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.PaymentMethod != core.PaymentMethodPromptPay {
		t.Fatalf("payment method = %q", intent.PaymentMethod)
	}
	if intent.Status != "Completed" {
		t.Fatalf("status = %q, want Completed", intent.Status)
	}
	if intent.PaymentDate != "2026-08-15" {
		t.Fatalf("payment date = %q", intent.PaymentDate)
	}
	if w.QuotedCode() != "00020101QUOTE" {
		t.Fatalf("quoted code = %q", w.QuotedCode())
	}
	if len(codes.payloads) != 1 || codes.payloads[0] != "00020101QUOTE" {
		t.Fatalf("renderer payloads = %v", codes.payloads)
	}
}

func TestRequestQuoteMissingInputsIsNoOp(t *testing.T) {
	tests := []struct {
		name   string
		cardID string
		amount core.Money
		phone  string
	}{
		{"no card", "", core.Money{Cents: 50000}, "0812345678"},
		{"zero amount", "C1", core.Money{}, "0812345678"},
		{"no phone", "C1", core.Money{Cents: 50000}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newStubGateway()
			w := newTestWorkflow(gw, nil)
			w.RequestQuote(context.Background(), tt.cardID, tt.amount, tt.phone)
			if got := gw.callCount(remote.ActionGeneratePromptPay); got != 0 {
				t.Fatalf("gateway called %d times, want 0", got)
			}
			if w.State() != StateIdle {
				t.Fatalf("state = %s, want idle", w.State())
			}
		})
	}
}

func TestRequestQuoteFailureStaysIdle(t *testing.T) {
	gw := newStubGateway()
	gw.fail(remote.ActionGeneratePromptPay)

	w := newTestWorkflow(gw, nil)
	w.RequestQuote(context.Background(), "C1", core.Money{Cents: 50000}, "0812345678")

	if w.State() != StateIdle {
		t.Fatalf("state = %s, want idle", w.State())
	}
	if w.QuotedCode() != "" {
		t.Fatalf("quoted code = %q, want empty", w.QuotedCode())
	}
}

func TestSecondQuoteOverwritesFirst(t *testing.T) {
	gw := newStubGateway()
	gw.respond(remote.ActionGeneratePromptPay, remote.PromptPayData{Payload: "FIRST"})

	w := newTestWorkflow(gw, nil)
	w.RequestQuote(context.Background(), "C1", core.Money{Cents: 50000}, "0812345678")

	gw.respond(remote.ActionGeneratePromptPay, remote.PromptPayData{Payload: "SECOND"})
	w.RequestQuote(context.Background(), "C2", core.Money{Cents: 77700}, "0899999999")

	intent, ok := w.Pending()
	if !ok {
		t.Fatal("expected a pending intent")
	}
	if intent.CardID != "C2" || intent.Amount.Cents != 77700 {
		t.Fatalf("held intent not overwritten: %+v", intent)
	}
	if w.QuotedCode() != "SECOND" {
		t.Fatalf("quoted code = %q, want SECOND", w.QuotedCode())
	}
}

func TestConfirmWithoutQuoteIsNoOp(t *testing.T) {
	gw := newStubGateway()
	w := newTestWorkflow(gw, nil)

	w.Confirm(context.Background())

	if got := gw.callCount(remote.ActionAddPayment); got != 0 {
		t.Fatalf("addPayment called %d times, want 0", got)
	}
	if w.State() != StateIdle {
		t.Fatalf("state = %s, want idle", w.State())
	}
}

func TestConfirmSettlesAndClears(t *testing.T) {
	gw := newStubGateway()
	gw.respond(remote.ActionGeneratePromptPay, remote.PromptPayData{Payload: "00020101QUOTE"})
	gw.respond(remote.ActionAddPayment, core.Card{CardID: "C1", CurrentBalance: core.Money{Cents: 50000}})
	gw.respond(remote.ActionGetCards, testCards())
	gw.respond(remote.ActionGetTransactions, []core.Transaction{})

	w := newTestWorkflow(gw, nil)
	w.RequestQuote(context.Background(), "C1", core.Money{Cents: 50000}, "0812345678")
	w.Confirm(context.Background())

	if w.State() != StateIdle {
		t.Fatalf("state = %s, want idle after confirm", w.State())
	}
	payload, ok := gw.lastCall(remote.ActionAddPayment)
	if !ok {
		t.Fatal("addPayment was never called")
	}
	var sent core.PaymentIntent
	if err := json.Unmarshal(payload, &sent); err != nil {
		t.Fatalf("unmarshal intent: %v", err)
	}
	if sent.CardID != "C1" || sent.Amount.Cents != 50000 || sent.PromptPayNumber != "0812345678" {
		t.Fatalf("unexpected settled intent: %+v", sent)
	}
	// Confirmation triggers the reload.
	if got := gw.callCount(remote.ActionGetCards); got != 1 {
		t.Fatalf("getCards called %d times after confirm, want 1", got)
	}
}

func TestConfirmFailureKeepsQuote(t *testing.T) {
	gw := newStubGateway()
	gw.respond(remote.ActionGeneratePromptPay, remote.PromptPayData{Payload: "00020101QUOTE"})
	gw.fail(remote.ActionAddPayment)

	w := newTestWorkflow(gw, nil)
	w.RequestQuote(context.Background(), "C1", core.Money{Cents: 50000}, "0812345678")
	w.Confirm(context.Background())

	if w.State() != StateQuoted {
		t.Fatalf("state = %s, want quoted after failed confirm", w.State())
	}
	if w.QuotedCode() != "00020101QUOTE" {
		t.Fatalf("quoted code lost on failure: %q", w.QuotedCode())
	}
}

func TestQuoteThroughMemoryGatewayPayload(t *testing.T) {
	// End to end against a real payload generator: the code handed to the
	// renderer is a well-formed EMV string for the requested phone/amount.
	gw := newStubGateway()
	amount := core.Money{Cents: 50000}
	gw.respond(remote.ActionGeneratePromptPay,
		remote.PromptPayData{Payload: promptpay.Payload("0812345678", amount)})

	codes := &recordingCodes{}
	w := newTestWorkflow(gw, codes)
	w.RequestQuote(context.Background(), "C1", amount, "0812345678")

	if len(codes.payloads) != 1 {
		t.Fatalf("renderer payloads = %d, want 1", len(codes.payloads))
	}
	got := codes.payloads[0]
	if !strings.HasPrefix(got, "000201") {
		t.Fatalf("payload %q does not start with EMV header", got)
	}
	if !strings.Contains(got, "5406500.00") {
		t.Fatalf("payload %q missing amount field", got)
	}
}
