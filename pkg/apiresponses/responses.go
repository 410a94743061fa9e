// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package apiresponses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError represents a standardized error response.
// The "error" field carries the human readable message clients display.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondBadRequest sends a 400 Bad Request response.
// Use this for client errors like malformed JSON or a wrong content type.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIError{
		Error: message,
		Code:  "BAD_REQUEST",
	})
}

// RespondNotFoundSimple sends a 404 Not Found response with a simple message.
func RespondNotFoundSimple(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, APIError{
		Error: message,
		Code:  "NOT_FOUND",
	})
}

// RespondMethodNotAllowed sends a 405 Method Not Allowed response.
func RespondMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, APIError{
		Error: "method not allowed",
		Code:  "METHOD_NOT_ALLOWED",
	})
}

// RespondRequestEntityTooLarge sends a 413 response when the request body
// exceeds the configured limit.
func RespondRequestEntityTooLarge(c *gin.Context, message string) {
	c.JSON(http.StatusRequestEntityTooLarge, APIError{
		Error: message,
		Code:  "REQUEST_TOO_LARGE",
	})
}

// RespondInternalErrorSimple sends a 500 response with a simple message.
// The caller is responsible for logging the underlying error; it is never
// sent to the client.
func RespondInternalErrorSimple(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, APIError{
		Error: message,
		Code:  "INTERNAL_ERROR",
	})
}

// RespondOK sends a 200 OK response with the given data.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
