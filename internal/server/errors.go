package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handoffdomain "github.com/smallbiznis/prodline/internal/handoff/domain"
	materialdomain "github.com/smallbiznis/prodline/internal/material/domain"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
	qadomain "github.com/smallbiznis/prodline/internal/qa/domain"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
	"github.com/smallbiznis/prodline/internal/store"
	warehousedomain "github.com/smallbiznis/prodline/internal/warehouse/domain"
	"github.com/smallbiznis/prodline/internal/workflow"
)

type errorPayload struct {
	Type    string               `json:"type"`
	Message string               `json:"message"`
	Errors  []workflow.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware turns the last gin error into a JSON error
// envelope. Handlers report failures through AbortWithError and never
// write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	errs := &workflow.FieldErrors{}
	errs.Add("request", "invalid_request", "invalid request")
	return errs
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if fErrs := asFieldErrors(err); fErrs != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fErrs.All(),
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isBadRequestError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asFieldErrors(err error) *workflow.FieldErrors {
	var fErrs *workflow.FieldErrors
	if errors.As(err, &fErrs) && fErrs != nil {
		return fErrs
	}
	return nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, materialdomain.ErrNotFound),
		errors.Is(err, recipedomain.ErrNotFound),
		errors.Is(err, productiondomain.ErrNotFound),
		errors.Is(err, productiondomain.ErrLotNotFound),
		errors.Is(err, productiondomain.ErrNoRecipe),
		errors.Is(err, handoffdomain.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isBadRequestError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, materialdomain.ErrInvalidID),
		errors.Is(err, recipedomain.ErrInvalidName),
		errors.Is(err, productiondomain.ErrInvalidStatus),
		errors.Is(err, productiondomain.ErrInsufficientStock),
		errors.Is(err, qadomain.ErrInvalidTarget),
		errors.Is(err, qadomain.ErrInvalidResult),
		errors.Is(err, qadomain.ErrInvalidTab),
		errors.Is(err, warehousedomain.ErrInvalidDirection):
		return true
	default:
		return false
	}
}
