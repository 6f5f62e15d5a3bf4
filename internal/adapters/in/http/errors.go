package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func newErrorBody(code int, err error) errorBody {
	body := errorBody{Code: code, Message: err.Error()}
	if kind, ok := errs.KindOf(err); ok {
		body.Kind = string(kind)
	}
	return body
}

// statusOf maps an error from the core to a response status.
func statusOf(err error) int {
	if kind, ok := errs.KindOf(err); ok {
		switch kind {
		case errs.KindNoSuchEdge, errs.KindGuardFailed:
			return http.StatusConflict
		case errs.KindNegativeStockRejected:
			return http.StatusUnprocessableEntity
		case errs.KindPermissionDenied:
			return http.StatusForbidden
		}
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(code, errorBody{Code: code, Message: http.StatusText(code)})
	}
	return c.JSON(code, newErrorBody(code, err))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: message})
}
