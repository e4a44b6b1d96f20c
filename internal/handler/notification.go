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
	"github.com/Saishivram/paperroute/internal/repository"
)

// NotificationHandler serves the owner's notification feed and the
// payment-reminder sweep.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Subscriptions *repository.SubscriptionRepo
}

func NewNotificationHandler(n *repository.NotificationRepo, s *repository.SubscriptionRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Subscriptions: s}
}

type notificationResp struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResp(n model.Notification) notificationResp {
	return notificationResp{ID: n.ID, Message: n.Message, Type: n.Type, Read: n.Read, CreatedAt: n.CreatedAt}
}

func toNotificationResps(ns []model.Notification) []notificationResp {
	out := make([]notificationResp, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNotificationResp(n))
	}
	return out
}

// List returns all notifications of the owner, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ns, err := h.Notifications.ListByRecipient(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "notifications", toNotificationResps(ns))
}

// Unread returns the owner's unread notifications together with the
// count.
func (h *NotificationHandler) Unread(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ns, err := h.Notifications.ListUnread(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "unread notifications", echo.Map{
		"count":         len(ns),
		"notifications": toNotificationResps(ns),
	})
}

// Create adds a notification addressed to the calling owner.
func (h *NotificationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Message == "" {
		return failJSON(c, http.StatusBadRequest, "message required")
	}
	if req.Type == "" {
		req.Type = model.NotificationInfo
	}
	if req.Type != model.NotificationInfo && req.Type != model.NotificationAlert {
		return failJSON(c, http.StatusBadRequest, "type must be info or alert")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n := model.Notification{RecipientID: uid, Message: req.Message, Type: req.Type}
	if err := h.Notifications.Create(ctx, &n); err != nil {
		return failJSON(c, http.StatusInternalServerError, "create notification failed")
	}
	return okJSON(c, http.StatusCreated, "notification created", toNotificationResp(n))
}

// MarkRead flips a notification to read. Re-reading an already-read
// notification succeeds without changing anything.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
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

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return failJSON(c, http.StatusNotFound, "notification not found")
		}
		return failJSON(c, http.StatusInternalServerError, "update failed")
	}
	return okJSON(c, http.StatusOK, "notification read", nil)
}

// Delete removes a notification and returns the refreshed unread count
// so clients can correct their badge without a second round trip.
func (h *NotificationHandler) Delete(c echo.Context) error {
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

	if _, err := h.Notifications.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return failJSON(c, http.StatusNotFound, "notification not found")
		}
		return failJSON(c, http.StatusInternalServerError, "delete failed")
	}
	count, err := h.Notifications.CountUnread(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "notification deleted", echo.Map{"unread_count": count})
}

// Sweep walks the owner's active subscriptions and emits payment
// reminders: an alert when the next payment is overdue, an info when it
// falls due within the next week. One unread notification per
// subscription per due-date window; re-running the sweep never
// duplicates. Best-effort with no catch-up for windows already missed.
func (h *NotificationHandler) Sweep(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Subscriptions.ListActiveForSweep(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}

	now := time.Now().UTC()
	created := 0
	for _, row := range rows {
		action := billing.EvaluateSweep(row.NextPaymentDate, now)
		if action == billing.SweepNone {
			continue
		}
		// The dedupe window opens when the due date enters the due-soon
		// horizon; anything unread created since then covers this cycle.
		windowStart := row.NextPaymentDate.Add(-billing.DueSoonWindow)
		exists, err := h.Notifications.UnreadExistsForSubscription(ctx, uid, row.SubscriptionID, windowStart)
		if err != nil {
			return failJSON(c, http.StatusInternalServerError, "query failed")
		}
		if exists {
			continue
		}

		n := model.Notification{RecipientID: uid, SubscriptionID: &row.SubscriptionID}
		switch action {
		case billing.SweepOverdue:
			n.Type = model.NotificationAlert
			n.Message = fmt.Sprintf("Payment of %.2f from %s for %q is overdue by %d day(s)",
				row.MonthlyFee, row.CustomerName, row.NewspaperTitle,
				billing.DaysOverdue(row.NextPaymentDate, now))
		case billing.SweepDueSoon:
			n.Type = model.NotificationInfo
			n.Message = fmt.Sprintf("Payment of %.2f from %s for %q is due in %d day(s)",
				row.MonthlyFee, row.CustomerName, row.NewspaperTitle,
				billing.DaysUntilDue(row.NextPaymentDate, now))
		}
		if err := h.Notifications.Create(ctx, &n); err != nil {
			return failJSON(c, http.StatusInternalServerError, "create notification failed")
		}
		created++
	}
	return okJSON(c, http.StatusOK, "sweep complete", echo.Map{"created": created})
}
