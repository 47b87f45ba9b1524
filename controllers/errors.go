package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, lending.ErrUserNotFound),
		errors.Is(err, lending.ErrBookNotFound),
		errors.Is(err, lending.ErrItemNotFound),
		errors.Is(err, lending.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, lending.ErrOutOfStock),
		errors.Is(err, lending.ErrAlreadyReturned),
		errors.Is(err, db.ErrConcurrentUpdate):
		return http.StatusConflict
	case lending.IsEligibilityError(err),
		errors.Is(err, lending.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lending.ErrInvalidRange),
		errors.Is(err, lending.ErrEmptyRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail answers {"error": msg}. Internal errors are logged and hidden.
func (s *Srv) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.Logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()), slog.Any("error", err))
		c.JSON(code, app.H{"error": "internal error"})
		return
	}
	c.JSON(code, app.H{"error": err.Error()})
}

func notFoundAs(err, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}
	return err
}
