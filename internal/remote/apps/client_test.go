package apps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardtrack/internal/notify"
	"cardtrack/internal/remote"
)

type captureNotifier struct {
	titles   []string
	messages []string
}

func (c *captureNotifier) Notify(_ context.Context, title, message string, _ notify.Severity) {
	c.titles = append(c.titles, title)
	c.messages = append(c.messages, message)
}

func TestInvokeSuccess(t *testing.T) {
	var gotBody remote.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &gotBody); err != nil {
			t.Errorf("request body is not an envelope: %v", err)
		}
		_ = json.NewEncoder(w).Encode(remote.Response{
			Status: remote.StatusSuccess,
			Data:   json.RawMessage(`{"payload":"00020101"}`),
		})
	}))
	defer srv.Close()

	busy := remote.NewBusyFlag()
	n := &captureNotifier{}
	c := New(srv.URL, 0, busy, n)

	data := c.Invoke(context.Background(), remote.ActionGeneratePromptPay, map[string]string{"phone": "081"})
	if data == nil {
		t.Fatal("expected data")
	}
	if gotBody.Action != remote.ActionGeneratePromptPay {
		t.Fatalf("action = %q", gotBody.Action)
	}
	if len(n.messages) != 0 {
		t.Fatalf("no notification expected on success, got %v", n.messages)
	}
	if busy.Busy() {
		t.Fatal("busy flag should be cleared after the call")
	}
}

func TestInvokeBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(remote.Response{
			Status:  "error",
			Message: "invalid payment parameters",
		})
	}))
	defer srv.Close()

	n := &captureNotifier{}
	c := New(srv.URL, 0, nil, n)

	if data := c.Invoke(context.Background(), remote.ActionAddPayment, nil); data != nil {
		t.Fatalf("expected nil, got %s", data)
	}
	if len(n.messages) != 1 || n.messages[0] != "invalid payment parameters" {
		t.Fatalf("business message should surface verbatim, got %v", n.messages)
	}
}

func TestInvokeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // refuse connections

	n := &captureNotifier{}
	c := New(srv.URL, 0, nil, n)

	if data := c.Invoke(context.Background(), remote.ActionGetCards, nil); data != nil {
		t.Fatalf("expected nil, got %s", data)
	}
	if len(n.messages) != 1 || n.messages[0] != "The remote store could not be reached" {
		t.Fatalf("transport failure should surface a generic message, got %v", n.messages)
	}
}

func TestInvokeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	n := &captureNotifier{}
	c := New(srv.URL, 0, nil, n)
	if data := c.Invoke(context.Background(), remote.ActionGetCards, nil); data != nil {
		t.Fatalf("expected nil, got %s", data)
	}
	if len(n.messages) != 1 {
		t.Fatalf("expected one notification, got %v", n.messages)
	}
}

func TestBusySetDuringCall(t *testing.T) {
	busy := remote.NewBusyFlag()
	var observed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		observed = busy.Busy()
		_ = json.NewEncoder(w).Encode(remote.Response{Status: remote.StatusSuccess})
	}))
	defer srv.Close()

	c := New(srv.URL, 0, busy, &captureNotifier{})
	if data := c.Invoke(context.Background(), remote.ActionGetCards, nil); data == nil {
		t.Fatal("expected success")
	}
	if !observed {
		t.Fatal("busy flag should be set while the call is in flight")
	}
}

func TestTimeoutConfiguration(t *testing.T) {
	c := New("http://example.invalid", 5*time.Second, nil, &captureNotifier{})
	if got := c.httpClient.Timeout; got != 5*time.Second {
		t.Fatalf("configured timeout not applied: got %v", got)
	}

	c = New("http://example.invalid", 0, nil, &captureNotifier{})
	if got := c.httpClient.Timeout; got != DefaultTimeout {
		t.Fatalf("zero timeout should fall back to %v, got %v", DefaultTimeout, got)
	}
}

func TestSuccessWithoutDataIsNonNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(remote.Response{Status: remote.StatusSuccess})
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil, &captureNotifier{})
	if data := c.Invoke(context.Background(), remote.ActionAddCard, nil); data == nil {
		t.Fatal("empty success must still be distinguishable from failure")
	}
}
