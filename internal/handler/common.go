// Package handler defines the HTTP handlers for the API surface.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

const dateOnly = "2006-01-02"

// getUserID extracts the user_id claim from echo.Context and converts
// it to uint64. JWTAuth stores the raw claim, whose concrete type
// depends on the JSON decoder.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// envelope is the response wrapper used by the owner dashboard routes.
// The delivery and customer routes predate it and return bare JSON.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func okJSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func failJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

// Health is a simple health-check endpoint used by load balancers to
// verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
