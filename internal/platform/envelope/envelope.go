// Package envelope renders every HTTP response as {"message": ..., "data": ...}.
package envelope

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// Response is the success and failure body shape.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

var empty = struct{}{}

// OK writes a 200 envelope.
func OK(c echo.Context, message string, data any) error {
	return JSON(c, http.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(c echo.Context, message string, data any) error {
	return JSON(c, http.StatusCreated, message, data)
}

func JSON(c echo.Context, status int, message string, data any) error {
	if data == nil {
		data = empty
	}
	return c.JSON(status, Response{Message: message, Data: data})
}

// ErrorHandler maps errors returned by handlers and middleware onto the envelope.
// Internal errors are logged and answered with a generic message.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := resolve(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = JSON(c, status, msg, nil)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func resolve(err error) (int, string) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae.Status, ae.Message
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, msg
	}
	return http.StatusInternalServerError, "something went wrong"
}
