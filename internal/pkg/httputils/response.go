// Package httputils provides HTTP utility functions.
package httputils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentgov/governor/pkg/errno"
)

// MessageResponse is the body used for plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body used for every raised error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteResponse writes the response to the client. A nil err serializes
// data as-is with status 200; otherwise the errno's HTTP status and
// message are written as a {"detail": ...} body. Unknown errors map to
// 500 without leaking their text.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		var e *errno.Errno
		if !errors.As(err, &e) {
			e = errno.ErrInternal
		}
		c.JSON(e.HTTPStatus(), ErrorResponse{Detail: e.Message})
		return
	}
	c.JSON(http.StatusOK, data)
}
