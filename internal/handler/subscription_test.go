package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saishivram/paperroute/internal/repository"
)

// newSubscriptionHandler returns a sqlmock-backed handler so tests
// exercise the real repository SQL without a database.
func newSubscriptionHandler(t *testing.T) (sqlmock.Sqlmock, *SubscriptionHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewSubscriptionHandler(
		repository.NewSubscriptionRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewNewspaperRepo(db),
	)
	return mock, h
}

// newOwnerContext builds an echo context carrying the claims JWTAuth
// would have set for owner 1.
func newOwnerContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(1))
	c.Set("role", "OWNER")
	return c, rec
}

var subscriptionRowCols = []string{
	"id", "customer_id", "newspaper_id", "start_date", "end_date",
	"status", "monthly_fee", "next_payment_date", "created_at",
}

// expectSubscriptionLookup queues the owner check and the row fetch the
// PATCH handler performs before validating dates.
func expectSubscriptionLookup(mock sqlmock.Sqlmock, start time.Time, end interface{}) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT n.owner_id FROM subscriptions s")).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions WHERE id=? LIMIT 1")).
		WillReturnRows(sqlmock.NewRows(subscriptionRowCols).
			AddRow(5, 2, 3, start, end, "active", 30.0, start.AddDate(0, 0, 30), time.Now()))
}

func patchSubscription(t *testing.T, h *SubscriptionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := newOwnerContext(http.MethodPatch, "/v1/subscriptions/5", body)
	c.SetPath("/v1/subscriptions/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))
	return rec
}

func TestSubscriptionUpdateRejectsEndBeforeStoredStart(t *testing.T) {
	mock, h := newSubscriptionHandler(t)
	expectSubscriptionLookup(mock, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), nil)

	rec := patchSubscription(t, h, `{"end_date":"2024-01-01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end_date cannot be before start_date")
	// No UPDATE may reach the database on a rejected patch.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionUpdateRejectsStartAfterStoredEnd(t *testing.T) {
	mock, h := newSubscriptionHandler(t)
	end := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	expectSubscriptionLookup(mock, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	rec := patchSubscription(t, h, `{"start_date":"2024-07-01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end_date cannot be before start_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionUpdateClearsEndDateWithNull(t *testing.T) {
	mock, h := newSubscriptionHandler(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	expectSubscriptionLookup(mock, start, end)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET end_date=? WHERE id=?")).
		WithArgs(nil, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN customers c ON c.id = s.customer_id")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "newspaper_id", "start_date", "end_date",
			"status", "monthly_fee", "next_payment_date",
			"name", "email", "address", "phone", "name", "title", "price",
		}).AddRow(5, 2, 3, start, nil, "active", 30.0, start.AddDate(0, 0, 30),
			"Ada Lovelace", "ada@example.com", "1 Analytical Way", nil,
			"morning-post", "Morning Post", 2.5))

	rec := patchSubscription(t, h, `{"end_date":null}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "end_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}
