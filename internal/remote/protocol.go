package remote

import (
	"encoding/json"
	"fmt"

	"cardtrack/internal/core"
)

// Action catalog of the remote store.
const (
	ActionGetCards          = "getCards"
	ActionGetTransactions   = "getTransactions"
	ActionAddCard           = "addCard"
	ActionAddTransaction    = "addTransaction"
	ActionDeleteCard        = "deleteCard"
	ActionGeneratePromptPay = "generatePromptPay"
	ActionAddPayment        = "addPayment"
)

// StatusSuccess is the only response status that carries data; every other
// status carries a human-readable message.
const StatusSuccess = "success"

type (
	// Request is the single opaque body of every call. Bundling action and
	// payload into one plain POST body keeps the transport on the
	// simple-request profile and avoids a preflight round trip.
	Request struct {
		Action  string `json:"action"`
		Payload any    `json:"payload"`
	}

	// Response is the tagged result envelope.
	Response struct {
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data,omitempty"`
		Message string          `json:"message,omitempty"`
	}

	// PromptPayRequest is the payload for generatePromptPay.
	PromptPayRequest struct {
		Phone  string     `json:"phone"`
		Amount core.Money `json:"amount"`
	}

	// PromptPayData is the data field of a successful generatePromptPay.
	PromptPayData struct {
		Payload string `json:"payload"`
	}

	// DeleteCardRequest is the payload for deleteCard.
	DeleteCardRequest struct {
		CardID string `json:"CardID"`
	}
)

// BusinessError is a non-success response from the remote store. Its message
// is surfaced to the user verbatim.
type BusinessError struct {
	Status  string
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote store returned status %q", e.Status)
}
