// Package session holds the per-client state of the tracker: the domain
// snapshot, the payment workflow, the mutation coordinator and the busy
// indicator. Everything is owned by a Session value instead of package-level
// state, so concurrent sessions and tests never share anything.
package session

import (
	"context"
	"encoding/json"
	"time"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/remote"
)

// ChartRenderer receives the debt distribution after every reload. The
// widget must tolerate being rebuilt from scratch each time; the previous
// chart instance is discarded.
type ChartRenderer interface {
	UpdateChart(labels []string, amounts []core.Money)
}

// Options carries the optional collaborators a Session talks to. Zero values
// get safe defaults: log-backed notifications, auto-approved confirmations,
// and no-op renderers.
type Options struct {
	Notifier  notify.Notifier
	Confirmer notify.Confirmer
	Codes     CodeRenderer
	Chart     ChartRenderer
	Now       func() time.Time
}

// Session wires one client's view of the tracker together.
type Session struct {
	Busy      *remote.BusyFlag
	Store     *Store
	Payments  *PaymentWorkflow
	Mutations *Coordinator
}

// New builds a session around a gateway. busy may be nil when the gateway
// does not report in-flight state.
func New(gw remote.Invoker, busy *remote.BusyFlag, opts Options) *Session {
	store := NewStore(gw)
	coord := NewCoordinator(gw, store, opts.Notifier, opts.Confirmer)
	payments := NewPaymentWorkflow(gw, coord, opts.Codes)
	if opts.Now != nil {
		store.now = opts.Now
		payments.now = opts.Now
	}

	if opts.Chart != nil {
		chart := opts.Chart
		store.OnReload(func() {
			d := store.Dashboard()
			amounts := make([]core.Money, len(d.Distribution.Labels))
			for i, label := range d.Distribution.Labels {
				amounts[i] = d.Distribution.Amounts[label]
			}
			chart.UpdateChart(d.Distribution.Labels, amounts)
		})
	}

	return &Session{
		Busy:      busy,
		Store:     store,
		Payments:  payments,
		Mutations: coord,
	}
}

// Start performs the initial load.
func (s *Session) Start(ctx context.Context) {
	s.Store.Reload(ctx)
}

func decodeRaw(raw json.RawMessage, into any) error {
	return json.Unmarshal(raw, into)
}
