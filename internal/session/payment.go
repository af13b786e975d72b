package session

import (
	"context"
	"sync"
	"time"

	"cardtrack/internal/core"
	"cardtrack/internal/remote"
)

// WorkflowState is where the payment workflow currently stands.
type WorkflowState string

const (
	StateIdle   WorkflowState = "idle"
	StateQuoted WorkflowState = "quoted"
)

// CodeRenderer receives the opaque payable code for display as a scannable
// image. The widget itself lives in the presentation layer.
type CodeRenderer interface {
	RenderCode(ctx context.Context, payload string)
}

// PaymentWorkflow drives the two-step settle flow: request a payable quote,
// then confirm it. A single pending slot holds the quoted intent; a second
// quote overwrites the first without warning (carried over from the source
// design; the old intent is unrecoverable).
type PaymentWorkflow struct {
	gw    remote.Invoker
	coord *Coordinator
	codes CodeRenderer
	now   func() time.Time

	mu      sync.Mutex
	pending *core.PaymentIntent
	code    string
}

func NewPaymentWorkflow(gw remote.Invoker, coord *Coordinator, codes CodeRenderer) *PaymentWorkflow {
	if codes == nil {
		codes = noopCodes{}
	}
	return &PaymentWorkflow{gw: gw, coord: coord, codes: codes, now: time.Now}
}

type noopCodes struct{}

func (noopCodes) RenderCode(context.Context, string) {}

// RequestQuote asks the remote store for a payable code against the card.
// Missing inputs make it a silent no-op rather than an error — permissive by
// design, matching the source behavior. On success the workflow holds the
// intent and hands the code to the renderer.
func (w *PaymentWorkflow) RequestQuote(ctx context.Context, cardID string, amount core.Money, promptPayNumber string) {
	if cardID == "" || amount.IsZero() || promptPayNumber == "" {
		return
	}

	data := w.gw.Invoke(ctx, remote.ActionGeneratePromptPay, remote.PromptPayRequest{
		Phone:  promptPayNumber,
		Amount: amount,
	})
	if data == nil {
		return
	}
	var res remote.PromptPayData
	if err := decodeRaw(data, &res); err != nil || res.Payload == "" {
		return
	}

	intent := &core.PaymentIntent{
		CardID:          cardID,
		Amount:          amount,
		PaymentDate:     w.now().Format("2006-01-02"),
		PaymentMethod:   core.PaymentMethodPromptPay,
		PromptPayNumber: promptPayNumber,
		// Tagged Completed at quote time already; the remote store
		// stores the tag as-is. Quirk preserved from the source data.
		Status: "Completed",
	}

	w.mu.Lock()
	w.pending = intent
	w.code = res.Payload
	w.mu.Unlock()

	w.codes.RenderCode(ctx, res.Payload)
}

// Confirm settles the held intent. Without a pending quote it is a no-op: no
// gateway call, no state change. On success the slot clears and the store
// reloads so the card balance reflects the remotely computed result; on
// failure the quote stays held for another attempt.
func (w *PaymentWorkflow) Confirm(ctx context.Context) {
	w.mu.Lock()
	intent := w.pending
	w.mu.Unlock()
	if intent == nil {
		return
	}

	if !w.coord.AddPayment(ctx, *intent) {
		return
	}

	w.mu.Lock()
	w.pending = nil
	w.code = ""
	w.mu.Unlock()
}

// State reports Idle or Quoted.
func (w *PaymentWorkflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		return StateQuoted
	}
	return StateIdle
}

// Pending returns a copy of the held intent, if any.
func (w *PaymentWorkflow) Pending() (core.PaymentIntent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return core.PaymentIntent{}, false
	}
	return *w.pending, true
}

// QuotedCode returns the payable code of the held quote, empty when idle.
func (w *PaymentWorkflow) QuotedCode() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.code
}
