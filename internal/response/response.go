// Package response renders the JSON envelopes shared by every endpoint.
package response

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/pagination"
)

const genericErrorMessage = "Internal server error"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"

var exposeErrors atomic.Bool

// ExposeErrors controls whether unexpected error text is included in
// responses. It is enabled outside production.
func ExposeErrors(on bool) {
	exposeErrors.Store(on)
}

type Success struct {
	Success   bool             `json:"success"`
	Data      any              `json:"data,omitempty"`
	Meta      *pagination.Meta `json:"meta,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type Failure struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Errors   []apperr.FieldError `json:"errors,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Success{Success: true, Data: data, Message: message, Timestamp: time.Now().UTC()})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Success{Success: true, Message: message, Timestamp: time.Now().UTC()})
}

func List(c *gin.Context, data any, meta pagination.Meta) {
	c.JSON(http.StatusOK, Success{Success: true, Data: data, Meta: &meta, Timestamp: time.Now().UTC()})
}

// Error renders err with the status of its kind and aborts the chain.
// Unexpected errors are logged and replaced by a generic message.
func Error(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Unexpected("unhandled error", err)
	}

	body := Failure{Message: appErr.Message, Errors: appErr.Fields}
	if redirect, ok := appErr.Details["redirect"].(string); ok {
		body.Redirect = redirect
	}

	if appErr.Kind == apperr.KindUnexpected {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg(appErr.Message)
		body.Message = genericErrorMessage
		if exposeErrors.Load() {
			body.Error = err.Error()
		}
	}

	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), body)
}
