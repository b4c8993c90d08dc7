package billing

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Cycle holds the two card days that define its billing cycle.
type Cycle struct {
	ClosingDay int
	DueDay     int
}

// Period is the half-open date range [Start, End) of purchases billed on one invoice.
type Period struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d civil.Date) bool {
	return !d.Before(p.Start) && d.Before(p.End)
}

// Last returns the last day included in the period.
func (p Period) Last() civil.Date {
	return p.End.AddDays(-1)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start, p.End)
}

// InvalidCardConfigurationError reports card days outside 1-31.
type InvalidCardConfigurationError struct {
	CardID     string
	ClosingDay int
	DueDay     int
}

func (e InvalidCardConfigurationError) Error() string {
	return fmt.Sprintf("card %s: closing day %d and due day %d must be between 1 and 31", e.CardID, e.ClosingDay, e.DueDay)
}

// Validate rejects card days outside 1-31.
func (c Cycle) Validate(cardID string) error {
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return InvalidCardConfigurationError{CardID: cardID, ClosingDay: c.ClosingDay, DueDay: c.DueDay}
	}
	return nil
}

// closesInDueMonth reports whether the statement closes in the same month
// its payment is due. Otherwise it closes in the month before.
func (c Cycle) closesInDueMonth() bool {
	return c.ClosingDay < c.DueDay
}

// closing returns the clamped closing date in the given month.
func (c Cycle) closing(year int, month time.Month) civil.Date {
	return DayIn(year, month, c.ClosingDay)
}

// InvoicePeriod returns the purchase window billed on the invoice due in
// the month of dueDate. The day of dueDate is ignored.
func (c Cycle) InvoicePeriod(dueDate civil.Date) Period {
	closeOffset := -1
	if c.closesInDueMonth() {
		closeOffset = 0
	}
	endY, endM := AddMonths(dueDate.Year, dueDate.Month, closeOffset)
	startY, startM := AddMonths(endY, endM, -1)
	return Period{
		Start: c.closing(startY, startM),
		End:   c.closing(endY, endM),
	}
}

// DueDateFor returns the due date of the invoice that bills a purchase on date.
func (c Cycle) DueDateFor(date civil.Date) civil.Date {
	// The cycle containing date closes this month unless date is on or
	// after this month's closing date.
	closeY, closeM := date.Year, date.Month
	if !date.Before(c.closing(date.Year, date.Month)) {
		closeY, closeM = AddMonths(closeY, closeM, 1)
	}
	dueY, dueM := closeY, closeM
	if !c.closesInDueMonth() {
		dueY, dueM = AddMonths(closeY, closeM, 1)
	}
	return DayIn(dueY, dueM, c.DueDay)
}

// PeriodFor returns the period that contains date.
func (c Cycle) PeriodFor(date civil.Date) Period {
	return c.InvoicePeriod(c.DueDateFor(date))
}
