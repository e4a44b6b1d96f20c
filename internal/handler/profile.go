package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/config"
	"github.com/Saishivram/paperroute/internal/repository"
	"github.com/Saishivram/paperroute/internal/utils"
)

// ProfileHandler serves the authenticated owner's own account.
type ProfileHandler struct {
	Cfg    config.Config
	Owners *repository.OwnerRepo
}

func NewProfileHandler(cfg config.Config, o *repository.OwnerRepo) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Owners: o}
}

type profileResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Get returns the owner's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Owners.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return failJSON(c, http.StatusNotFound, "owner not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "profile", profileResp{ID: o.ID, Name: o.Name, Email: o.Email})
}

// profilePatchReq is the typed partial update for the owner profile.
// Unknown fields are rejected at the decode boundary.
type profilePatchReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Update applies a partial update to the owner's own profile. Only
// name, email and password can change.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req profilePatchReq
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	patch := repository.OwnerProfilePatch{Name: req.Name, Email: req.Email}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return failJSON(c, http.StatusBadRequest, "name cannot be empty")
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		return failJSON(c, http.StatusBadRequest, "email cannot be empty")
	}
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

	if err := h.Owners.UpdateProfile(ctx, uid, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrOwnerNotFound):
			return failJSON(c, http.StatusNotFound, "owner not found")
		case errors.Is(err, repository.ErrEmailExists):
			return failJSON(c, http.StatusConflict, "email already exists")
		}
		return failJSON(c, http.StatusInternalServerError, "update failed")
	}

	o, err := h.Owners.GetByID(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "profile updated", profileResp{ID: o.ID, Name: o.Name, Email: o.Email})
}
