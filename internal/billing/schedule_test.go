package billing

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultNextPaymentDate(t *testing.T) {
    // Thirty days, not one calendar month.
    assert.Equal(t, date(2024, time.January, 31), DefaultNextPaymentDate(date(2024, time.January, 1)))
    assert.Equal(t, date(2024, time.March, 16), DefaultNextPaymentDate(date(2024, time.February, 15)))
}

func TestAddMonthClamped(t *testing.T) {
    cases := []struct {
        name string
        in   time.Time
        want time.Time
    }{
        {"mid-month", date(2024, time.March, 15), date(2024, time.April, 15)},
        {"jan 31 leap year", date(2024, time.January, 31), date(2024, time.February, 29)},
        {"jan 31 non-leap", date(2023, time.January, 31), date(2023, time.February, 28)},
        {"mar 31 clamps to apr 30", date(2024, time.March, 31), date(2024, time.April, 30)},
        {"dec rolls into next year", date(2024, time.December, 10), date(2025, time.January, 10)},
        {"feb 29 keeps day when possible", date(2024, time.February, 29), date(2024, time.March, 29)},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, AddMonthClamped(tc.in))
        })
    }
}

func TestAddMonthClampedNeverNormalizes(t *testing.T) {
    // time.AddDate(0, 1, 0) on Jan 31 gives Mar 2/3; the clamped version
    // must always land in the immediately following month.
    for day := 1; day <= 31; day++ {
        in := date(2024, time.January, day)
        got := AddMonthClamped(in)
        assert.Equal(t, time.February, got.Month(), "day %d", day)
    }
}

func TestClassifyPayment(t *testing.T) {
    due := date(2024, time.June, 10)

    assert.Equal(t, "paid", ClassifyPayment(date(2024, time.June, 9), due))
    assert.Equal(t, "paid", ClassifyPayment(due, due))
    assert.Equal(t, "late", ClassifyPayment(date(2024, time.June, 11), due))

    // Clock components on the same day never make a payment late.
    lateInDay := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.UTC)
    assert.Equal(t, "paid", ClassifyPayment(lateInDay, due))
}

func TestDaysOverdueAndUntilDue(t *testing.T) {
    due := date(2024, time.June, 10)

    assert.Equal(t, 3, DaysOverdue(due, date(2024, time.June, 13)))
    assert.Equal(t, 0, DaysOverdue(due, due))

    assert.Equal(t, 5, DaysUntilDue(due, date(2024, time.June, 5)))
    assert.Equal(t, 0, DaysUntilDue(due, due))
}

func TestEvaluateSweep(t *testing.T) {
    due := date(2024, time.June, 10)
    cases := []struct {
        name string
        now  time.Time
        want SweepAction
    }{
        {"well before window", date(2024, time.June, 1), SweepNone},
        {"window opens seven days out", date(2024, time.June, 3), SweepDueSoon},
        {"day before due", date(2024, time.June, 9), SweepDueSoon},
        {"on the due date", due, SweepDueSoon},
        {"day after due", date(2024, time.June, 11), SweepOverdue},
        {"long overdue", date(2024, time.July, 1), SweepOverdue},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, EvaluateSweep(due, tc.now))
        })
    }
}
