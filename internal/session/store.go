package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cardtrack/internal/core"
	"cardtrack/internal/remote"
)

// Store is the in-memory snapshot of cards and transactions, mirroring the
// last successful reload from the remote store. Writes never patch it in
// place; every mutation path goes through Reload so the snapshot cannot
// drift from the source of truth.
type Store struct {
	gw  remote.Invoker
	now func() time.Time

	mu    sync.Mutex
	cards []core.Card
	txns  []core.Transaction

	onReload []func()
}

// TransactionView is a transaction joined with its card's display name for
// listing. Orphans (card deleted) show the fallback label.
type TransactionView struct {
	core.Transaction
	CardName string `json:"CardName"`
}

func NewStore(gw remote.Invoker) *Store {
	return &Store{gw: gw, now: time.Now}
}

// OnReload registers a callback fired after every reload, successful or not,
// so derived views recompute unconditionally. Not safe to call once Reload
// is in use.
func (s *Store) OnReload(fn func()) {
	s.onReload = append(s.onReload, fn)
}

// Reload re-fetches cards and transactions concurrently and replaces each
// collection wholesale. A failed fetch keeps the prior collection: stale but
// consistent beats empty. Reload subscribers always fire afterwards.
func (s *Store) Reload(ctx context.Context) {
	var cards []core.Card
	var txns []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cards = fetch[core.Card](gctx, s.gw, remote.ActionGetCards)
		return nil
	})
	g.Go(func() error {
		txns = fetch[core.Transaction](gctx, s.gw, remote.ActionGetTransactions)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	if cards != nil {
		s.cards = cards
	}
	if txns != nil {
		s.txns = txns
	}
	s.mu.Unlock()

	for _, fn := range s.onReload {
		fn()
	}
}

// fetch performs one collection fetch. It returns nil on failure or
// undecodable data so the caller keeps the stale collection, and a non-nil,
// possibly empty slice on success so an emptied remote store empties the
// snapshot too.
func fetch[T any](ctx context.Context, gw remote.Invoker, action string) []T {
	raw := gw.Invoke(ctx, action, nil)
	if raw == nil {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.WarnContext(ctx, "Discarding undecodable collection", "action", action, "error", err)
		return nil
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Cards returns a copy of the card snapshot.
func (s *Store) Cards() []core.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Card(nil), s.cards...)
}

// Transactions returns a copy of the transaction snapshot.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...)
}

// CardByID looks a card up in the snapshot.
func (s *Store) CardByID(id string) (core.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.CardID == id {
			return c, true
		}
	}
	return core.Card{}, false
}

// Dashboard recomputes the derived metrics from the current snapshot.
func (s *Store) Dashboard() core.Dashboard {
	return core.ComputeDashboard(s.Cards(), s.now().Day())
}

// TransactionViews returns the transactions newest first with card names
// resolved. Transactions whose card is gone keep rendering under the
// fallback label.
func (s *Store) TransactionViews() []TransactionView {
	s.mu.Lock()
	names := make(map[string]string, len(s.cards))
	for _, c := range s.cards {
		names[c.CardID] = c.CardName
	}
	views := make([]TransactionView, 0, len(s.txns))
	for _, t := range s.txns {
		name, ok := names[t.CardID]
		if !ok {
			name = core.UnknownCardLabel
		}
		views = append(views, TransactionView{Transaction: t, CardName: name})
	}
	s.mu.Unlock()

	sort.SliceStable(views, func(i, j int) bool {
		return parseDate(views[i].Date).After(parseDate(views[j].Date))
	})
	return views
}

func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Unparseable dates sort to the end.
	return time.Time{}
}
