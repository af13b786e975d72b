// Package gsheets is a fallback gateway that talks to the backing
// spreadsheet directly instead of going through the hosted script endpoint.
// It serves the read and append actions; payment actions need the script's
// server-side logic and answer with a business failure.
package gsheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"cardtrack/internal/core"
	"cardtrack/internal/notify"
	"cardtrack/internal/remote"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	cardsSheet    string
	txnsSheet     string
	busy          *remote.BusyFlag
	notifier      notify.Notifier

	// Serializes calls: ID generation and the read-row-count-then-write
	// append are not safe to interleave.
	mu sync.Mutex
}

var _ remote.Invoker = (*Client)(nil)

// NewFromEnv creates a spreadsheet gateway using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_CARDS_SHEET_NAME (default "Cards"),
// GOOGLE_TRANSACTIONS_SHEET_NAME (default "Transactions").
func NewFromEnv(ctx context.Context, busy *remote.BusyFlag, notifier notify.Notifier) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	cardsSheet := strings.TrimSpace(os.Getenv("GOOGLE_CARDS_SHEET_NAME"))
	if cardsSheet == "" {
		cardsSheet = "Cards"
	}
	txnsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if txnsSheet == "" {
		txnsSheet = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		cardsSheet:    cardsSheet,
		txnsSheet:     txnsSheet,
		busy:          busy,
		notifier:      notifier,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Invoke(ctx context.Context, action string, payload any) json.RawMessage {
	c.busy.Set(true)
	defer c.busy.Set(false)

	data, err := c.dispatch(ctx, action, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Sheets gateway call failed", "action", action, "error", err)
		c.notifier.Notify(ctx, "Error", err.Error(), notify.SeverityError)
		return nil
	}
	return data
}

func (c *Client) dispatch(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case remote.ActionGetCards:
		cards, err := c.readCards(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cards)

	case remote.ActionGetTransactions:
		txns, err := c.readTransactions(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(txns)

	case remote.ActionAddCard:
		var card core.Card
		if err := decode(payload, &card); err != nil {
			return nil, err
		}
		rowNum, err := c.nextRow(ctx, c.cardsSheet)
		if err != nil {
			return nil, err
		}
		if card.CardID == "" {
			// Row 1 is the header, so data row N continues the C-series
			// even across restarts and rows written by other clients.
			card.CardID = fmt.Sprintf("C%03d", rowNum-1)
		}
		row := []any{card.CardID, card.CardName, card.BankName,
			card.CurrentBalance.Baht(), card.CreditLimit.Baht(), int(card.DueDate)}
		if err := c.writeRow(ctx, c.cardsSheet, rowNum, row); err != nil {
			return nil, err
		}
		return json.Marshal(card)

	case remote.ActionAddTransaction:
		var txn core.Transaction
		if err := decode(payload, &txn); err != nil {
			return nil, err
		}
		rowNum, err := c.nextRow(ctx, c.txnsSheet)
		if err != nil {
			return nil, err
		}
		if txn.TransactionID == "" {
			txn.TransactionID = fmt.Sprintf("T%03d", rowNum-1)
		}
		row := []any{txn.TransactionID, txn.CardID, txn.Description,
			txn.Category, txn.Amount.Baht(), txn.Date}
		if err := c.writeRow(ctx, c.txnsSheet, rowNum, row); err != nil {
			return nil, err
		}
		return json.Marshal(txn)

	default:
		// deleteCard, generatePromptPay and addPayment require the
		// hosted script's server-side logic.
		return nil, fmt.Errorf("action %q is not supported by the sheets gateway", action)
	}
}

// Card rows: CardID, CardName, BankName, CurrentBalance, CreditLimit, DueDate.
func (c *Client) readCards(ctx context.Context) ([]core.Card, error) {
	rows, err := c.readRows(ctx, c.cardsSheet, "A2:F")
	if err != nil {
		return nil, err
	}
	cards := make([]core.Card, 0, len(rows))
	for _, cols := range rows {
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		cards = append(cards, core.Card{
			CardID:         safeGet(cols, 0),
			CardName:       safeGet(cols, 1),
			BankName:       safeGet(cols, 2),
			CurrentBalance: core.AmountOrZero(safeGet(cols, 3)),
			CreditLimit:    core.AmountOrZero(safeGet(cols, 4)),
			DueDate:        parseDay(safeGet(cols, 5)),
		})
	}
	return cards, nil
}

// Transaction rows: TransactionID, CardID, Description, Category, Amount, Date.
func (c *Client) readTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, c.txnsSheet, "A2:F")
	if err != nil {
		return nil, err
	}
	txns := make([]core.Transaction, 0, len(rows))
	for _, cols := range rows {
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		txns = append(txns, core.Transaction{
			TransactionID: safeGet(cols, 0),
			CardID:        safeGet(cols, 1),
			Description:   safeGet(cols, 2),
			Category:      safeGet(cols, 3),
			Amount:        core.AmountOrZero(safeGet(cols, 4)),
			Date:          safeGet(cols, 5),
		})
	}
	return txns, nil
}

func (c *Client) readRows(ctx context.Context, sheetName, span string) ([][]string, error) {
	rng := fmt.Sprintf("%s!%s", sheetName, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// nextRow finds the next empty row by the sheet's A-column height.
func (c *Client) nextRow(ctx context.Context, sheetName string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	return len(resp.Values) + 1, nil
}

func (c *Client) writeRow(ctx context.Context, sheetName string, rowNum int, row []any) error {
	dataRange := fmt.Sprintf("%s!A%d", sheetName, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	return nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func parseDay(s string) core.Day {
	var d core.Day
	// Reuse the tolerant decode path so sheet cells behave like wire data.
	_ = d.UnmarshalJSON([]byte(s))
	return d
}

func decode(payload, into any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
