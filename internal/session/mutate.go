package session

import (
	"context"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/remote"
)

// Coordinator runs the create/delete operations. Every operation follows
// the same contract: invoke the gateway, and on success notify the user and
// reload the store exactly once. Nothing is patched locally; the reload is
// the only way a mutation becomes visible. On failure the gateway has
// already told the user, so the coordinator stays quiet.
type Coordinator struct {
	gw        remote.Invoker
	store     *Store
	notifier  notify.Notifier
	confirmer notify.Confirmer
}

func NewCoordinator(gw remote.Invoker, store *Store, notifier notify.Notifier, confirmer notify.Confirmer) *Coordinator {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if confirmer == nil {
		confirmer = notify.ApproveAll{}
	}
	return &Coordinator{gw: gw, store: store, notifier: notifier, confirmer: confirmer}
}

// AddCard records a new card. Returns whether the mutation was applied.
func (c *Coordinator) AddCard(ctx context.Context, card core.Card) bool {
	return c.apply(ctx, remote.ActionAddCard, card, "Card added")
}

// AddTransaction records a new charge.
func (c *Coordinator) AddTransaction(ctx context.Context, txn core.Transaction) bool {
	return c.apply(ctx, remote.ActionAddTransaction, txn, "Transaction recorded")
}

// AddPayment records a settlement. The paying card's new balance is computed
// remotely and picked up by the reload.
func (c *Coordinator) AddPayment(ctx context.Context, intent core.PaymentIntent) bool {
	return c.apply(ctx, remote.ActionAddPayment, intent, "Payment recorded, balance updated")
}

// DeleteCard removes a card after destructive-action confirmation. The
// card's transactions are not cascaded, remotely or locally; they live on as
// orphans with a fallback display label.
func (c *Coordinator) DeleteCard(ctx context.Context, cardID string) bool {
	ok := c.confirmer.ConfirmDestructive(ctx, "Delete this card?",
		"The card will be removed permanently.")
	if !ok {
		return false
	}
	return c.apply(ctx, remote.ActionDeleteCard, remote.DeleteCardRequest{CardID: cardID}, "Card deleted")
}

func (c *Coordinator) apply(ctx context.Context, action string, payload any, successMsg string) bool {
	if c.gw.Invoke(ctx, action, payload) == nil {
		return false
	}
	c.notifier.Notify(ctx, "Success", successMsg, notify.SeveritySuccess)
	c.store.Reload(ctx)
	return true
}
