// Package billing holds the date arithmetic and classification rules for
// the subscription payment schedule.  Keeping them here, away from the
// handlers, lets the rules be exercised without a database.
package billing

import "time"

// DueSoonWindow is how far ahead of a due date the sweep starts emitting
// "due soon" notifications.
const DueSoonWindow = 7 * 24 * time.Hour

// DefaultNextPaymentDate returns the next payment date seeded for a new
// subscription when the caller does not supply one: thirty days after the
// start date.
func DefaultNextPaymentDate(startDate time.Time) time.Time {
    return startDate.AddDate(0, 0, 30)
}

// AddMonthClamped advances d by exactly one calendar month, keeping the
// same day of month and clamping to the last day when the target month is
// shorter.  2024-01-31 becomes 2024-02-29; 2024-03-31 becomes 2024-04-30.
// time.AddDate would normalize past the month boundary instead.
func AddMonthClamped(d time.Time) time.Time {
    y, m, day := d.Date()
    first := time.Date(y, m+1, 1, 0, 0, 0, 0, d.Location())
    if last := daysIn(first.Year(), first.Month()); day > last {
        day = last
    }
    return time.Date(first.Year(), first.Month(), day,
        d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
    return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClassifyPayment returns the status for a payment made on paymentDate
// against dueDate: late when the money arrived after the due date, paid
// otherwise.  Both values are date-only; the comparison ignores clocks.
func ClassifyPayment(paymentDate, dueDate time.Time) string {
    if truncateDay(paymentDate).After(truncateDay(dueDate)) {
        return "late"
    }
    return "paid"
}

// DaysOverdue returns how many whole days now is past due.  Zero or
// negative results mean the payment is not overdue.
func DaysOverdue(due, now time.Time) int {
    return int(truncateDay(now).Sub(truncateDay(due)).Hours() / 24)
}

// DaysUntilDue returns how many whole days remain until due, rounding up
// so that a payment due later today counts as zero days away.
func DaysUntilDue(due, now time.Time) int {
    diff := truncateDay(due).Sub(truncateDay(now))
    return int(diff.Hours() / 24)
}

// SweepAction describes what the notification sweep should do for one
// subscription.
type SweepAction int

const (
    SweepNone    SweepAction = iota // nothing due
    SweepDueSoon                    // payment due within DueSoonWindow
    SweepOverdue                    // payment past its due date
)

// EvaluateSweep decides the sweep action for a subscription whose next
// payment is due on due, evaluated at now.
func EvaluateSweep(due, now time.Time) SweepAction {
    d, n := truncateDay(due), truncateDay(now)
    switch {
    case n.After(d):
        return SweepOverdue
    case d.Sub(n) <= DueSoonWindow:
        return SweepDueSoon
    }
    return SweepNone
}

func truncateDay(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
