package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the body of every JSON response the desk API returns
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, status, message string, data interface{}) {
	c.JSON(code, envelope{Status: status, Message: message, Data: data})
}

// Success writes a 200 with data
func Success(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, statusSuccess, message, data)
}

// Created writes a 201 with the new record
func Created(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, statusSuccess, message, data)
}

// Error writes an error envelope. A non-nil detail is returned under
// data.error so clients can show field level messages.
func Error(c *gin.Context, code int, message string, detail interface{}) {
	var data interface{}
	if detail != nil {
		data = gin.H{"error": detail}
	}
	respond(c, code, statusError, message, data)
}

func BadRequest(c *gin.Context, message string, detail interface{}) {
	Error(c, http.StatusBadRequest, message, detail)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string, detail interface{}) {
	Error(c, http.StatusConflict, message, detail)
}

// ValidationError writes a 422 listing the fields that failed
func ValidationError(c *gin.Context, message string, fields interface{}) {
	Error(c, http.StatusUnprocessableEntity, message, fields)
}

func InternalServerError(c *gin.Context, message string, detail interface{}) {
	Error(c, http.StatusInternalServerError, message, detail)
}
