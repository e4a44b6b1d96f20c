package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saishivram/paperroute/internal/repository"
)

func newNotificationHandler(t *testing.T) (sqlmock.Sqlmock, *NotificationHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewNotificationHandler(
		repository.NewNotificationRepo(db),
		repository.NewSubscriptionRepo(db),
	)
	return mock, h
}

func runSweep(t *testing.T, h *NotificationHandler) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := newOwnerContext(http.MethodPost, "/v1/notifications/sweep", "")
	c.SetPath("/v1/notifications/sweep")
	require.NoError(t, h.Sweep(c))
	return rec
}

func expectSweepRows(mock sqlmock.Sqlmock, due time.Time) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.next_payment_date, s.monthly_fee, c.name, n.title")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "next_payment_date", "monthly_fee", "name", "title"}).
			AddRow(7, due, 30.0, "Ada Lovelace", "Morning Post"))
}

func TestSweepCreatesReminderForDueSoonSubscription(t *testing.T) {
	mock, h := newNotificationHandler(t)
	expectSweepRows(mock, time.Now().UTC().AddDate(0, 0, 3))

	// No unread reminder inside the window yet.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM notifications")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(1, 7, sqlmock.AnyArg(), "info", false).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM notifications WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := runSweep(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepDoesNotDuplicateUnreadReminder(t *testing.T) {
	mock, h := newNotificationHandler(t)
	expectSweepRows(mock, time.Now().UTC().AddDate(0, 0, 3))

	// An unread reminder from an earlier run still covers this window, so
	// a second sweep must not insert another row.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM notifications")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	rec := runSweep(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepEmitsAlertForOverduePayment(t *testing.T) {
	mock, h := newNotificationHandler(t)
	expectSweepRows(mock, time.Now().UTC().AddDate(0, 0, -4))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM notifications")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(1, 7, sqlmock.AnyArg(), "alert", false).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM notifications WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := runSweep(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
