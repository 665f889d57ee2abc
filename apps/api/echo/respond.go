package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maktabuz/maktab/core"
)

// Envelope is the uniform response body. Success responses carry Data (and
// Pagination/Statistics where relevant); failures carry the bilingual
// Message/MessageUz pair and, for validation failures, per-field Errors.
type Envelope struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	MessageUz  string            `json:"message_uz,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Pagination *core.PageMeta    `json:"pagination,omitempty"`
	Statistics interface{}       `json:"statistics,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Envelope{Success: true, Data: data})
}

func respondList(ctx echo.Context, data interface{}, meta core.PageMeta) error {
	return ctx.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &meta})
}

func respondStats(ctx echo.Context, stats interface{}) error {
	return ctx.JSON(http.StatusOK, Envelope{Success: true, Statistics: stats})
}

func respondMessage(ctx echo.Context, msg, msgUz string) error {
	return ctx.JSON(http.StatusOK, Envelope{Success: true, Message: msg, MessageUz: msgUz})
}
