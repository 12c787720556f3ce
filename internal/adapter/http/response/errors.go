package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, &ErrorDetail{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 Bad Request response with the given error message.
func BadRequest(c echo.Context, message string) error {
	return writeError(c, http.StatusBadRequest, CodeInvalidRequest, message)
}

// InvalidRequestBody writes a 400 Bad Request response for malformed request bodies.
func InvalidRequestBody(c echo.Context) error {
	return writeError(c, http.StatusBadRequest, CodeInvalidRequest, MsgInvalidRequestBody)
}

// ValidationError writes a 400 Bad Request response with validation error details.
func ValidationError(c echo.Context, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, &ErrorDetail{
		Code:    CodeValidationError,
		Message: MsgValidationFailed,
		Details: details,
	})
}

// ValidationErrorWithMessage writes a 400 Bad Request response with a custom message.
func ValidationErrorWithMessage(c echo.Context, message string) error {
	return writeError(c, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound writes a 404 Not Found response.
func NotFound(c echo.Context, message string) error {
	return writeError(c, http.StatusNotFound, CodeNotFound, message)
}

// BadGateway writes a 502 Bad Gateway response for upstream failures.
func BadGateway(c echo.Context) error {
	return writeError(c, http.StatusBadGateway, CodeBadGateway, MsgProviderFailed)
}

// ServiceUnavailable writes a 503 Service Unavailable response.
func ServiceUnavailable(c echo.Context) error {
	return writeError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, MsgServiceUnavailable)
}

// GatewayTimeout writes a 504 Gateway Timeout response.
func GatewayTimeout(c echo.Context) error {
	return writeError(c, http.StatusGatewayTimeout, CodeTimeout, MsgTimeout)
}

// RequestCancelled writes a 504 Gateway Timeout response for cancelled requests.
func RequestCancelled(c echo.Context) error {
	return writeError(c, http.StatusGatewayTimeout, CodeTimeout, MsgRequestCancelled)
}

// InternalServerError writes a 500 Internal Server Error response.
func InternalServerError(c echo.Context) error {
	return writeError(c, http.StatusInternalServerError, CodeInternalError, MsgInternalError)
}
