package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// BaseResponse is the success envelope shared by every endpoint.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorBody is the failure envelope written by ErrorHandlerMiddleware.
type ErrorBody struct {
	Success  bool   `json:"success"`
	Status   int    `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func CreatedResponse[T any](message string, data T) BaseResponse[T] {
	res := SuccessResponse(message, data)
	res.Code = fiber.StatusCreated
	return res
}
