package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/billing"
	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/repository"
)

// SubscriptionHandler serves the subscription lifecycle: atomic create
// with seed payment, expanded reads, typed partial updates and soft
// cancellation.
type SubscriptionHandler struct {
	Subscriptions *repository.SubscriptionRepo
	Customers     *repository.CustomerRepo
	Newspapers    *repository.NewspaperRepo
}

func NewSubscriptionHandler(s *repository.SubscriptionRepo, cu *repository.CustomerRepo, n *repository.NewspaperRepo) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: s, Customers: cu, Newspapers: n}
}

// Create validates the links, defaults the schedule and writes the
// subscription together with its seed pending payment in one
// transaction.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		CustomerID      uint64  `json:"customer_id"`
		NewspaperID     uint64  `json:"newspaper_id"`
		StartDate       string  `json:"start_date"`
		EndDate         *string `json:"end_date"`
		Status          string  `json:"status"`
		MonthlyFee      float64 `json:"monthly_fee"`
		NextPaymentDate *string `json:"next_payment_date"`
	}
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.CustomerID == 0 || req.NewspaperID == 0 {
		return failJSON(c, http.StatusBadRequest, "customer_id/newspaper_id required")
	}
	if req.MonthlyFee <= 0 {
		return failJSON(c, http.StatusBadRequest, "monthly_fee must be positive")
	}
	start, err := time.Parse(dateOnly, req.StartDate)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		e, err := time.Parse(dateOnly, *req.EndDate)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		if e.Before(start) {
			return failJSON(c, http.StatusBadRequest, "end_date cannot be before start_date")
		}
		end = &e
	}
	status := req.Status
	if status == "" {
		status = model.SubscriptionActive
	}
	if !model.ValidSubscriptionStatus(status) {
		return failJSON(c, http.StatusBadRequest, "invalid status")
	}
	next := billing.DefaultNextPaymentDate(start)
	if req.NextPaymentDate != nil && *req.NextPaymentDate != "" {
		n, err := time.Parse(dateOnly, *req.NextPaymentDate)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "next_payment_date must be YYYY-MM-DD")
		}
		next = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return failJSON(c, http.StatusNotFound, "customer not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	if _, err := h.Newspapers.GetByIDAndOwner(ctx, req.NewspaperID, uid); err != nil {
		if errors.Is(err, repository.ErrNewspaperNotFound) {
			return failJSON(c, http.StatusNotFound, "newspaper not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}

	sub := model.Subscription{
		CustomerID:      req.CustomerID,
		NewspaperID:     req.NewspaperID,
		StartDate:       start,
		EndDate:         end,
		Status:          status,
		MonthlyFee:      req.MonthlyFee,
		NextPaymentDate: next,
	}
	if err := h.Subscriptions.CreateWithSeedPayment(ctx, &sub); err != nil {
		return failJSON(c, http.StatusInternalServerError, "create subscription failed")
	}

	d, err := h.Subscriptions.GetDetail(ctx, sub.ID, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusCreated, "subscription created", d)
}

// List returns all subscriptions on the owner's newspapers with
// customer and newspaper expanded.
func (h *SubscriptionHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	subs, err := h.Subscriptions.ListDetails(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "subscriptions", subs)
}

// Get returns one subscription of the owner.
func (h *SubscriptionHandler) Get(c echo.Context) error {
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

	d, err := h.Subscriptions.GetDetail(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return failJSON(c, http.StatusNotFound, "subscription not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "subscription", d)
}

// subscriptionPatchReq is the typed partial update for a subscription.
// EndDate uses json.RawMessage so an explicit null (clear the end date)
// is distinguishable from the field being absent. Unknown fields are
// rejected at the decode boundary.
type subscriptionPatchReq struct {
	StartDate       *string         `json:"start_date"`
	EndDate         json.RawMessage `json:"end_date"`
	Status          *string         `json:"status"`
	MonthlyFee      *float64        `json:"monthly_fee"`
	NextPaymentDate *string         `json:"next_payment_date"`
}

// Update applies a partial update, re-validating the date invariant
// against the combination of stored and incoming values.
func (h *SubscriptionHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req subscriptionPatchReq
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ownerID, err := h.Subscriptions.OwnerID(ctx, id)
	if err != nil || ownerID != uid {
		return failJSON(c, http.StatusNotFound, "subscription not found")
	}
	stored, err := h.Subscriptions.GetByID(ctx, id)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}

	patch := repository.SubscriptionPatch{}
	effStart := stored.StartDate
	effEnd := stored.EndDate

	if req.StartDate != nil {
		s, err := time.Parse(dateOnly, *req.StartDate)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		patch.StartDate = &s
		effStart = s
	}
	if req.EndDate != nil {
		if bytes.Equal(bytes.TrimSpace(req.EndDate), []byte("null")) {
			var cleared *time.Time
			patch.EndDate = &cleared
			effEnd = nil
		} else {
			var raw string
			if err := json.Unmarshal(req.EndDate, &raw); err != nil {
				return failJSON(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD or null")
			}
			e, err := time.Parse(dateOnly, raw)
			if err != nil {
				return failJSON(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD or null")
			}
			ep := &e
			patch.EndDate = &ep
			effEnd = &e
		}
	}
	if effEnd != nil && effEnd.Before(effStart) {
		return failJSON(c, http.StatusBadRequest, "end_date cannot be before start_date")
	}
	if req.Status != nil {
		if !model.ValidSubscriptionStatus(*req.Status) {
			return failJSON(c, http.StatusBadRequest, "invalid status")
		}
		patch.Status = req.Status
	}
	if req.MonthlyFee != nil {
		if *req.MonthlyFee <= 0 {
			return failJSON(c, http.StatusBadRequest, "monthly_fee must be positive")
		}
		patch.MonthlyFee = req.MonthlyFee
	}
	if req.NextPaymentDate != nil {
		n, err := time.Parse(dateOnly, *req.NextPaymentDate)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "next_payment_date must be YYYY-MM-DD")
		}
		patch.NextPaymentDate = &n
	}

	if err := h.Subscriptions.Update(ctx, id, patch); err != nil {
		return failJSON(c, http.StatusInternalServerError, "update failed")
	}

	d, err := h.Subscriptions.GetDetail(ctx, id, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "subscription updated", d)
}

// Cancel soft-cancels a subscription. Only the status changes; payment
// history and the row itself stay put.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
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
	if err := h.Subscriptions.Cancel(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return failJSON(c, http.StatusNotFound, "subscription not found")
		}
		return failJSON(c, http.StatusInternalServerError, "cancel failed")
	}
	return okJSON(c, http.StatusOK, "subscription cancelled", nil)
}
