package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/config"
	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/repository"
	"github.com/Saishivram/paperroute/internal/utils"
)

// EmployeeHandler serves the owner's employee roster.
type EmployeeHandler struct {
	Cfg       config.Config
	Employees *repository.EmployeeRepo
}

func NewEmployeeHandler(cfg config.Config, e *repository.EmployeeRepo) *EmployeeHandler {
	return &EmployeeHandler{Cfg: cfg, Employees: e}
}

type employeeResp struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role"`
}

func toEmployeeResp(e model.Employee) employeeResp {
	return employeeResp{ID: e.ID, Name: e.Name, Email: e.Email, Phone: e.Phone, Role: e.Role}
}

// Create adds an employee to the owner's roster.
func (h *EmployeeHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Phone    *string `json:"phone"`
		Role     string  `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return failJSON(c, http.StatusBadRequest, "name/email/password required")
	}
	if req.Role == "" {
		req.Role = model.EmployeeRoleDelivery
	}
	if !model.ValidEmployeeRole(req.Role) {
		return failJSON(c, http.StatusBadRequest, "invalid role")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e := model.Employee{OwnerID: uid, Name: req.Name, Email: req.Email, Phone: req.Phone, Role: req.Role}
	if err := h.Employees.Create(ctx, &e, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return failJSON(c, http.StatusConflict, "email already exists")
		}
		return failJSON(c, http.StatusInternalServerError, "create employee failed")
	}
	return okJSON(c, http.StatusCreated, "employee created", toEmployeeResp(e))
}

// List returns all of the owner's employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	emps, err := h.Employees.ListByOwner(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]employeeResp, 0, len(emps))
	for _, e := range emps {
		out = append(out, toEmployeeResp(e))
	}
	return okJSON(c, http.StatusOK, "employees", out)
}

// Get returns one employee of the owner.
func (h *EmployeeHandler) Get(c echo.Context) error {
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

	e, err := h.Employees.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return failJSON(c, http.StatusNotFound, "employee not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "employee", toEmployeeResp(e))
}

// employeePatchReq is the typed partial update for an employee. Unknown
// fields are rejected at the decode boundary.
type employeePatchReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// Update applies a partial update to an employee of the owner.
func (h *EmployeeHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req employeePatchReq
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Role != nil && !model.ValidEmployeeRole(*req.Role) {
		return failJSON(c, http.StatusBadRequest, "invalid role")
	}

	patch := repository.EmployeePatch{Name: req.Name, Email: req.Email, Phone: req.Phone, Role: req.Role}
	if req.Password != nil {
		if *req.Password == "" {
			return failJSON(c, http.StatusBadRequest, "password cannot be empty")
		}
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return failJSON(c, http.StatusInternalServerError, "hash password failed")
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Existence check first so a no-op patch still 404s correctly.
	if _, err := h.Employees.GetByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return failJSON(c, http.StatusNotFound, "employee not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Employees.Update(ctx, id, uid, patch); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return failJSON(c, http.StatusConflict, "email already exists")
		}
		return failJSON(c, http.StatusInternalServerError, "update failed")
	}

	e, err := h.Employees.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "employee updated", toEmployeeResp(e))
}

// Delete removes an employee from the owner's roster.
func (h *EmployeeHandler) Delete(c echo.Context) error {
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

	if err := h.Employees.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failJSON(c, http.StatusNotFound, "employee not found")
		}
		return failJSON(c, http.StatusInternalServerError, "delete failed")
	}
	return okJSON(c, http.StatusOK, "employee deleted", nil)
}
