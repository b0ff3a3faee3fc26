package echoapi

import "github.com/labstack/echo/v4"

// Response is the envelope wrapping every API payload.
type Response struct {
	Success bool        `json:"success"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func jsonData(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Response{Success: true, Data: data})
}

func jsonMessage(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, Response{Success: true, Message: msg})
}
