package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/billing"
	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/queue"
	"github.com/Saishivram/paperroute/internal/repository"
	queue_publisher "github.com/Saishivram/paperroute/internal/service"
)

// PaymentHandler serves payment recording, listings and analytics.
type PaymentHandler struct {
	Payments      *repository.PaymentRepo
	Subscriptions *repository.SubscriptionRepo
	Notifications *repository.NotificationRepo
}

func NewPaymentHandler(p *repository.PaymentRepo, s *repository.SubscriptionRepo, n *repository.NotificationRepo) *PaymentHandler {
	return &PaymentHandler{Payments: p, Subscriptions: s, Notifications: n}
}

type paymentResp struct {
	ID             uint64  `json:"id"`
	SubscriptionID uint64  `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
}

// Record books a payment against a subscription. The due date is copied
// from the subscription's current next_payment_date, the payment is
// classified paid or late against it, and the schedule advances by
// exactly one clamped calendar month. Payment insert and schedule
// advance share one transaction.
func (h *PaymentHandler) Record(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		SubscriptionID uint64  `json:"subscription_id"`
		Amount         float64 `json:"amount"`
		PaymentDate    string  `json:"payment_date"`
	}
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.SubscriptionID == 0 {
		return failJSON(c, http.StatusBadRequest, "subscription_id required")
	}
	if req.Amount <= 0 {
		return failJSON(c, http.StatusBadRequest, "amount must be positive")
	}
	payDate := time.Now().UTC()
	if req.PaymentDate != "" {
		payDate, err = time.Parse(dateOnly, req.PaymentDate)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "payment_date must be YYYY-MM-DD")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ownerID, err := h.Subscriptions.OwnerID(ctx, req.SubscriptionID)
	if err != nil || ownerID != uid {
		return failJSON(c, http.StatusNotFound, "subscription not found")
	}

	tx, err := h.Subscriptions.DB().BeginTx(ctx, nil)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sub, err := h.Subscriptions.GetTx(ctx, tx, req.SubscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return failJSON(c, http.StatusNotFound, "subscription not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}

	due := sub.NextPaymentDate
	p := model.Payment{
		SubscriptionID: sub.ID,
		Amount:         req.Amount,
		PaymentDate:    payDate,
		DueDate:        due,
		Status:         billing.ClassifyPayment(payDate, due),
	}
	if err := h.Payments.InsertTx(ctx, tx, &p); err != nil {
		return failJSON(c, http.StatusInternalServerError, "insert payment failed")
	}

	next := billing.AddMonthClamped(due)
	if err := h.Subscriptions.AdvanceNextPaymentDateTx(ctx, tx, sub.ID, next); err != nil {
		return failJSON(c, http.StatusInternalServerError, "advance schedule failed")
	}

	if err := tx.Commit(); err != nil {
		return failJSON(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	// Post-commit side effects are best-effort: a broken broker or a
	// failed notification insert never undoes a recorded payment.
	detail, derr := h.Subscriptions.GetDetail(ctx, sub.ID, uid)
	if p.Status == model.PaymentLate {
		days := billing.DaysOverdue(due, payDate)
		msg := fmt.Sprintf("Late payment received for subscription #%d (%d day(s) after due date)", sub.ID, days)
		if derr == nil {
			msg = fmt.Sprintf("Late payment from %s for %q received %d day(s) after due date",
				detail.Customer.Name, detail.Newspaper.Title, days)
		}
		_ = h.Notifications.Create(ctx, &model.Notification{
			RecipientID: uid,
			Message:     msg,
			Type:        model.NotificationAlert,
		})
	}

	ev := queue.PaymentRecordedEvent{
		PaymentID:      p.ID,
		SubscriptionID: sub.ID,
		OwnerID:        uid,
		Amount:         p.Amount,
		PaymentDate:    p.PaymentDate.Format(dateOnly),
		DueDate:        p.DueDate.Format(dateOnly),
		Status:         p.Status,
		NextPaymentDue: next.Format(dateOnly),
		RecordedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if derr == nil {
		ev.CustomerName = detail.Customer.Name
		ev.NewspaperTitle = detail.Newspaper.Title
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishPaymentRecorded(pubCtx, ev)
	}()

	return c.JSON(http.StatusCreated, paymentResp{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		Amount:         p.Amount,
		PaymentDate:    p.PaymentDate.Format(dateOnly),
		DueDate:        p.DueDate.Format(dateOnly),
		Status:         p.Status,
	})
}

// List returns all payments on the owner's subscriptions.
func (h *PaymentHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pays, err := h.Payments.ListByOwner(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "payments", pays)
}

// ListBySubscription returns the payment history of one subscription.
func (h *PaymentHandler) ListBySubscription(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ownerID, err := h.Subscriptions.OwnerID(ctx, id)
	if err != nil || ownerID != uid {
		return failJSON(c, http.StatusNotFound, "subscription not found")
	}
	pays, err := h.Payments.ListBySubscription(ctx, id)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "payments", pays)
}

// ListLate returns the owner's late payments.
func (h *PaymentHandler) ListLate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pays, err := h.Payments.ListLateByOwner(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "late payments", pays)
}

// Analytics aggregates payment activity over a date range.
func (h *PaymentHandler) Analytics(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	start, end, err := parseDateRange(c)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Payments.Analytics(ctx, uid, start, end)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "payment analytics", a)
}

// parseDateRange reads startDate/endDate query params, defaulting to the
// last thirty days when absent.
func parseDateRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	end := now
	var err error
	if s := c.QueryParam("startDate"); s != "" {
		start, err = time.Parse(dateOnly, s)
		if err != nil {
			return start, end, errors.New("startDate must be YYYY-MM-DD")
		}
	}
	if e := c.QueryParam("endDate"); e != "" {
		end, err = time.Parse(dateOnly, e)
		if err != nil {
			return start, end, errors.New("endDate must be YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return start, end, errors.New("endDate cannot be before startDate")
	}
	return start, end, nil
}
