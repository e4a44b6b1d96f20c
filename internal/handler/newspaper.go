package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/repository"
)

// NewspaperHandler serves the owner's newspaper catalogue.
type NewspaperHandler struct {
	Newspapers *repository.NewspaperRepo
}

func NewNewspaperHandler(n *repository.NewspaperRepo) *NewspaperHandler {
	return &NewspaperHandler{Newspapers: n}
}

type newspaperResp struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Publisher string  `json:"publisher"`
	Frequency string  `json:"frequency"`
	Price     float64 `json:"price"`
}

func toNewspaperResp(n model.Newspaper) newspaperResp {
	return newspaperResp{ID: n.ID, Name: n.Name, Title: n.Title,
		Publisher: n.Publisher, Frequency: n.Frequency, Price: n.Price}
}

// Create adds a newspaper to the owner's catalogue.
func (h *NewspaperHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Name      string  `json:"name"`
		Title     string  `json:"title"`
		Publisher string  `json:"publisher"`
		Frequency string  `json:"frequency"`
		Price     float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Title) == "" {
		return failJSON(c, http.StatusBadRequest, "name/title required")
	}
	if req.Price <= 0 {
		return failJSON(c, http.StatusBadRequest, "price must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n := model.Newspaper{OwnerID: uid, Name: req.Name, Title: req.Title,
		Publisher: req.Publisher, Frequency: req.Frequency, Price: req.Price}
	if err := h.Newspapers.Create(ctx, &n); err != nil {
		return failJSON(c, http.StatusInternalServerError, "create newspaper failed")
	}
	return okJSON(c, http.StatusCreated, "newspaper created", toNewspaperResp(n))
}

// List returns all of the owner's newspapers.
func (h *NewspaperHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	papers, err := h.Newspapers.ListByOwner(ctx, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]newspaperResp, 0, len(papers))
	for _, n := range papers {
		out = append(out, toNewspaperResp(n))
	}
	return okJSON(c, http.StatusOK, "newspapers", out)
}

// Get returns one newspaper of the owner.
func (h *NewspaperHandler) Get(c echo.Context) error {
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

	n, err := h.Newspapers.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNewspaperNotFound) {
			return failJSON(c, http.StatusNotFound, "newspaper not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "newspaper", toNewspaperResp(n))
}

// newspaperPatchReq is the typed partial update for a newspaper.
// Unknown fields are rejected at the decode boundary.
type newspaperPatchReq struct {
	Name      *string  `json:"name"`
	Title     *string  `json:"title"`
	Publisher *string  `json:"publisher"`
	Frequency *string  `json:"frequency"`
	Price     *float64 `json:"price"`
}

// Update applies a partial update to a newspaper of the owner.
func (h *NewspaperHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req newspaperPatchReq
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Price != nil && *req.Price <= 0 {
		return failJSON(c, http.StatusBadRequest, "price must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Newspapers.GetByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNewspaperNotFound) {
			return failJSON(c, http.StatusNotFound, "newspaper not found")
		}
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	patch := repository.NewspaperPatch{Name: req.Name, Title: req.Title,
		Publisher: req.Publisher, Frequency: req.Frequency, Price: req.Price}
	if err := h.Newspapers.Update(ctx, id, uid, patch); err != nil {
		return failJSON(c, http.StatusInternalServerError, "update failed")
	}

	n, err := h.Newspapers.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return failJSON(c, http.StatusInternalServerError, "query failed")
	}
	return okJSON(c, http.StatusOK, "newspaper updated", toNewspaperResp(n))
}

// Delete removes a newspaper, refusing while subscriptions still
// reference it.
func (h *NewspaperHandler) Delete(c echo.Context) error {
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

	if err := h.Newspapers.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return failJSON(c, http.StatusConflict, "newspaper still has subscriptions")
		case errors.Is(err, sql.ErrNoRows):
			return failJSON(c, http.StatusNotFound, "newspaper not found")
		}
		return failJSON(c, http.StatusInternalServerError, "delete failed")
	}
	return okJSON(c, http.StatusOK, "newspaper deleted", nil)
}
