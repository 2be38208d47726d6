package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope writes the standard response body. The HTTP status line stays 200;
// clients read the logical status from the envelope.
func envelope(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// SuccessResponse writes a 200 envelope around data.
func SuccessResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusOK, data)
}

// BadRequestResponse writes a 400 envelope, typically around []ValidationError.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusBadRequest, data)
}

// InternalServerErrorResponse writes a generic 500 envelope.
func InternalServerErrorResponse(c echo.Context) error {
	return envelope(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes an AppError with its own status, or a 500 envelope
// for any other error.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return envelope(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
