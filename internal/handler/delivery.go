package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/config"
	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/repository"
)

// DeliveryHandler serves delivery assignment, the status state machine
// and the operational views. This surface predates the response
// envelope and returns bare JSON.
type DeliveryHandler struct {
	Cfg           config.Config
	Deliveries    *repository.DeliveryRepo
	Employees     *repository.EmployeeRepo
	Customers     *repository.CustomerRepo
	Newspapers    *repository.NewspaperRepo
	Subscriptions *repository.SubscriptionRepo
	Notifications *repository.NotificationRepo
}

func NewDeliveryHandler(cfg config.Config, d *repository.DeliveryRepo, e *repository.EmployeeRepo,
	cu *repository.CustomerRepo, n *repository.NewspaperRepo, s *repository.SubscriptionRepo,
	no *repository.NotificationRepo) *DeliveryHandler {
	return &DeliveryHandler{Cfg: cfg, Deliveries: d, Employees: e, Customers: cu,
		Newspapers: n, Subscriptions: s, Notifications: no}
}

type deliveryResp struct {
	ID           uint64 `json:"id"`
	EmployeeID   uint64 `json:"employee_id"`
	CustomerID   uint64 `json:"customer_id"`
	NewspaperID  uint64 `json:"newspaper_id"`
	DeliveryDate string `json:"delivery_date"`
	Status       string `json:"status"`
}

// Create assigns a delivery. The customer must hold an ACTIVE
// subscription to the newspaper at assignment time; otherwise nothing is
// written, the owner gets an alert notification and the request fails
// with 422.
func (h *DeliveryHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		EmployeeID   uint64 `json:"employee_id"`
		CustomerID   uint64 `json:"customer_id"`
		NewspaperID  uint64 `json:"newspaper_id"`
		DeliveryDate string `json:"delivery_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EmployeeID == 0 || req.CustomerID == 0 || req.NewspaperID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id/customer_id/newspaper_id required"})
	}
	date := time.Now().UTC()
	if req.DeliveryDate != "" {
		date, err = time.Parse(dateOnly, req.DeliveryDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery_date must be YYYY-MM-DD"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	emp, err := h.Employees.GetByIDAndOwner(ctx, req.EmployeeID, uid)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	cust, err := h.Customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	paper, err := h.Newspapers.GetByIDAndOwner(ctx, req.NewspaperID, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNewspaperNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "newspaper not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// Fresh status check at assignment time: a cancellation a second ago
	// already blocks this delivery.
	active, err := h.Subscriptions.ActiveExists(ctx, req.CustomerID, req.NewspaperID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !active {
		_ = h.Notifications.Create(ctx, &model.Notification{
			RecipientID: uid,
			Message: fmt.Sprintf("Delivery assignment rejected: %s has no active subscription to %q",
				cust.Name, paper.Title),
			Type: model.NotificationAlert,
		})
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no active subscription for customer and newspaper"})
	}

	d := model.Delivery{EmployeeID: emp.ID, CustomerID: cust.ID, NewspaperID: paper.ID, DeliveryDate: date}
	if err := h.Deliveries.Create(ctx, &d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create delivery failed"})
	}
	return c.JSON(http.StatusCreated, deliveryResp{
		ID: d.ID, EmployeeID: d.EmployeeID, CustomerID: d.CustomerID, NewspaperID: d.NewspaperID,
		DeliveryDate: d.DeliveryDate.Format(dateOnly), Status: d.Status,
	})
}

// UpdateStatus moves a pending delivery to delivered or failed.
// Terminal states are immutable: a second transition attempt gets 409.
func (h *DeliveryHandler) UpdateStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.DeliveryTerminal(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be delivered or failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ownerID, err := h.Deliveries.OwnerID(ctx, id)
	if err != nil || ownerID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "delivery not found"})
	}
	if err := h.Deliveries.UpdateStatus(ctx, id, req.Status); err != nil {
		switch {
		case errors.Is(err, repository.ErrDeliveryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "delivery not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "delivery already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	d, err := h.Deliveries.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, deliveryResp{
		ID: d.ID, EmployeeID: d.EmployeeID, CustomerID: d.CustomerID, NewspaperID: d.NewspaperID,
		DeliveryDate: d.DeliveryDate.Format(dateOnly), Status: d.Status,
	})
}

// List returns every delivery on the owner's newspapers.
func (h *DeliveryHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Deliveries.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Worklist returns the active operational view: pending deliveries plus
// terminal ones still inside the grace window. The filter is evaluated
// server-side on every request, so a page reload reflects stored state.
func (h *DeliveryHandler) Worklist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Deliveries.ListWorklist(ctx, uid, h.Cfg.WorklistGrace)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByDateRange returns the owner's deliveries between startDate and
// endDate inclusive.
func (h *DeliveryHandler) ByDateRange(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	start, end, err := parseDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Deliveries.ListByDateRange(ctx, uid, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// ByEmployee returns the owner's deliveries assigned to one employee.
func (h *DeliveryHandler) ByEmployee(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	empID, err := paramID(c, "employeeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Employees.GetByIDAndOwner(ctx, empID, uid); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out, err := h.Deliveries.ListByEmployee(ctx, uid, empID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Analytics aggregates delivery activity over a date range.
func (h *DeliveryHandler) Analytics(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	start, end, err := parseDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Deliveries.Analytics(ctx, uid, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, a)
}
