package core

import (
	"strconv"
)

// UnknownCardLabel is shown for transactions whose card no longer exists.
// Deleting a card does not cascade to its transactions, so orphans are a
// normal, accepted state.
const UnknownCardLabel = "Unknown Card"

// PaymentMethodPromptPay is the only settlement method the tracker records.
const PaymentMethodPromptPay = "PromptPay"

type (
	// Day is a 1-31 day of month. The remote store serves it as either a
	// JSON number or a numeric string; anything else decodes to zero,
	// which can never satisfy the due-soon window.
	Day int

	// Card is a tracked credit account. Field names are the wire contract
	// with the remote store and must not change.
	Card struct {
		CardID         string `json:"CardID"`
		CardName       string `json:"CardName"`
		BankName       string `json:"BankName"`
		CurrentBalance Money  `json:"CurrentBalance"`
		CreditLimit    Money  `json:"CreditLimit"`
		DueDate        Day    `json:"DueDate"`
	}

	// Transaction is a charge against a card. CardID is a reference, not
	// ownership: referential integrity is not enforced locally.
	Transaction struct {
		TransactionID string `json:"TransactionID"`
		CardID        string `json:"CardID"`
		Description   string `json:"Description"`
		Category      string `json:"Category"`
		Amount        Money  `json:"Amount"`
		Date          string `json:"Date"`
	}

	// PaymentIntent is an ephemeral settlement record held between quote
	// and confirmation. Status is tagged "Completed" at quote time; the
	// remote store treats the tag as informational, not as a state signal.
	PaymentIntent struct {
		CardID          string `json:"CardID"`
		Amount          Money  `json:"Amount"`
		PaymentDate     string `json:"PaymentDate"`
		PaymentMethod   string `json:"PaymentMethod"`
		PromptPayNumber string `json:"PromptPayNumber"`
		Status          string `json:"Status"`
	}
)

// UnmarshalJSON decodes a day of month from a JSON number or string,
// falling back to zero on unparseable input.
func (d *Day) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*d = 0
		return nil
	}
	*d = Day(n)
	return nil
}
