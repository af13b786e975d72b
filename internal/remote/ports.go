// Package remote defines the gateway port to the remote card store and the
// wire protocol it speaks. Implementations live in the subpackages: apps
// (the Apps-Script-style web endpoint), gsheets (direct spreadsheet
// fallback) and memory (offline/testing).
package remote

import (
	"context"
	"encoding/json"
	"sync/atomic"
)

// Invoker performs a single remote call. A nil result means the call failed
// and the failure has already been reported through the notification side
// channel; callers must nil-check instead of handling an error value.
type Invoker interface {
	Invoke(ctx context.Context, action string, payload any) json.RawMessage
}

// BusyFlag is the shared in-flight indicator a gateway toggles around each
// call. It is a plain boolean, not a counter: when calls overlap, whichever
// finishes last clears it, and an earlier completion can clear it while a
// later call is still running. Known limitation carried over from the source
// design.
type BusyFlag struct {
	v atomic.Bool
}

func NewBusyFlag() *BusyFlag { return &BusyFlag{} }

// Set records whether a call is in flight. Safe on a nil receiver so
// gateways can be built without an indicator.
func (b *BusyFlag) Set(busy bool) {
	if b == nil {
		return
	}
	b.v.Store(busy)
}

// Busy reports the current indicator state.
func (b *BusyFlag) Busy() bool {
	if b == nil {
		return false
	}
	return b.v.Load()
}
