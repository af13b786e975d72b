package core

// Distribution maps card display names to balances for charting. Labels
// preserves first-seen card order; cards that share a display name collapse
// to a single entry holding the later card's balance. The collapse understates
// the chart, never the totals.
type Distribution struct {
	Labels  []string         `json:"labels"`
	Amounts map[string]Money `json:"amounts"`
}

// Dashboard holds the derived portfolio metrics. It is recomputed from the
// card snapshot on every reload and never stored.
type Dashboard struct {
	TotalDebt      Money        `json:"totalDebt"`
	TotalAvailable Money        `json:"totalAvailable"`
	DueSoonCount   int          `json:"dueSoonCount"`
	Distribution   Distribution `json:"distribution"`
}

// DueSoonWindow is the number of days ahead (inclusive) a due date counts as
// due soon.
const DueSoonWindow = 7

// ComputeDashboard derives the dashboard metrics from a card snapshot.
// today is the current day of month (time.Now().Day()).
//
// The due-soon test compares day-of-month values within the current calendar
// month only: a due date early next month is not flagged even when it is
// days away. Kept as-is from the source system.
func ComputeDashboard(cards []Card, today int) Dashboard {
	d := Dashboard{
		Distribution: Distribution{Amounts: make(map[string]Money, len(cards))},
	}

	var totalLimit int64
	for _, c := range cards {
		bal := c.CurrentBalance
		d.TotalDebt.Cents += bal.Cents
		totalLimit += c.CreditLimit.Cents

		if _, seen := d.Distribution.Amounts[c.CardName]; !seen {
			d.Distribution.Labels = append(d.Distribution.Labels, c.CardName)
		}
		d.Distribution.Amounts[c.CardName] = bal

		dayDiff := int(c.DueDate) - today
		if dayDiff >= 0 && dayDiff <= DueSoonWindow && bal.Cents > 0 {
			d.DueSoonCount++
		}
	}

	// May go negative when the portfolio is over-limit; that is a signal,
	// not an error.
	d.TotalAvailable = Money{Cents: totalLimit - d.TotalDebt.Cents}
	return d
}

// PaymentOptions returns the full and minimum settlement amounts for a card.
// Minimum is 10% of the current balance, truncated to the satang.
func PaymentOptions(c Card) (full, minimum Money) {
	full = c.CurrentBalance
	minimum = Money{Cents: c.CurrentBalance.Cents / 10}
	return full, minimum
}
