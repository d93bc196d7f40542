package base

import (
	"fmt"
	"net/http"

	"fleet-charging/repositories/base"

	"github.com/labstack/echo/v4"
)

// ===================================================================
// STANDARD RESPONSE PATTERNS
// ===================================================================

// CreateSuccessResponse creates a standard success response
func CreateSuccessResponse(message string, data interface{}) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "success",
		"message": message,
	}

	if data != nil {
		response["data"] = data
	}

	return response
}

// CreateErrorResponse creates a standard error response
func CreateErrorResponse(message string) map[string]interface{} {
	return map[string]interface{}{
		"status":  "error",
		"message": message,
	}
}

// ===================================================================
// HTTP ERROR HANDLING
// ===================================================================

// HandleRepositoryError converts repository errors to appropriate HTTP errors
func HandleRepositoryError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	if base.IsEntityNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, base.GetErrorMessage(err))
	}

	if base.IsConflict(err) {
		return echo.NewHTTPError(http.StatusConflict, base.GetErrorMessage(err))
	}

	if base.IsValidationError(err) {
		return echo.NewHTTPError(http.StatusBadRequest, base.GetErrorMessage(err))
	}

	// Default to internal server error
	return echo.NewHTTPError(http.StatusInternalServerError, base.GetErrorMessage(err))
}

// CreateHTTPError creates a standard HTTP error with formatted message
func CreateHTTPError(statusCode int, message string, args ...interface{}) error {
	formattedMessage := fmt.Sprintf(message, args...)
	return echo.NewHTTPError(statusCode, formattedMessage)
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(message string, args ...interface{}) error {
	return CreateHTTPError(http.StatusBadRequest, message, args...)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, args ...interface{}) error {
	return CreateHTTPError(http.StatusNotFound, message, args...)
}

// ConflictError creates a 409 Conflict error
func ConflictError(message string, args ...interface{}) error {
	return CreateHTTPError(http.StatusConflict, message, args...)
}

// InternalServerError creates a 500 Internal Server Error
func InternalServerError(message string, args ...interface{}) error {
	return CreateHTTPError(http.StatusInternalServerError, message, args...)
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// SendSuccessJSON sends a success response with JSON data
func SendSuccessJSON(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, CreateSuccessResponse(message, data))
}

// SendOKJSON sends a 200 OK response
func SendOKJSON(c echo.Context, message string, data interface{}) error {
	return SendSuccessJSON(c, http.StatusOK, message, data)
}

// SendCreatedJSON sends a 201 Created response
func SendCreatedJSON(c echo.Context, message string, data interface{}) error {
	return SendSuccessJSON(c, http.StatusCreated, message, data)
}

// SendGetResponse sends response for get operations
func SendGetResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// SendDeletionJSON sends a deletion success response
func SendDeletionJSON(c echo.Context, resourceType string, identifier interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("%s %v deleted successfully", resourceType, identifier),
	})
}

// HandleBindError handles request binding errors
func HandleBindError(c echo.Context, err error) error {
	return BadRequestError("Invalid request body: %v", err)
}

// ===================================================================
// OPERATION RESULT HELPERS
// ===================================================================

// SendRepositoryResult handles repository operation results
func SendRepositoryResult(c echo.Context, data interface{}, err error, successMessage string) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}

	return SendOKJSON(c, successMessage, data)
}

// SendCreationResult handles creation operation results
func SendCreationResult(c echo.Context, data interface{}, err error, resourceType string) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}

	return SendCreatedJSON(c, fmt.Sprintf("%s created successfully", resourceType), data)
}

// SendUpdateResult handles update operation results
func SendUpdateResult(c echo.Context, data interface{}, err error, resourceType string, identifier interface{}) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}

	return SendOKJSON(c, fmt.Sprintf("%s %v updated successfully", resourceType, identifier), data)
}

// SendDeletionResult handles deletion operation results
func SendDeletionResult(c echo.Context, err error, resourceType string, identifier interface{}) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}

	return SendDeletionJSON(c, resourceType, identifier)
}
