package base

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ===================================================================
// PARAMETER EXTRACTION HELPERS
// ===================================================================

// ExtractIDParam extracts and validates ID parameter from URL
func ExtractIDParam(c echo.Context, paramName string) (uint, error) {
	idStr := c.Param(paramName)
	if idStr == "" {
		return 0, BadRequestError("%s parameter is required", paramName)
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, BadRequestError("Invalid %s parameter: must be a valid integer", paramName)
	}

	return uint(id), nil
}

// ExtractRobotID extracts the robot ID parameter
func ExtractRobotID(c echo.Context) (uint, error) {
	return ExtractIDParam(c, "id")
}

// ExtractStationID extracts the station ID parameter
func ExtractStationID(c echo.Context) (uint, error) {
	return ExtractIDParam(c, "stationId")
}

// ===================================================================
// QUERY PARAMETER HELPERS
// ===================================================================

// ExtractOptionalStringParam extracts optional string parameter with default
func ExtractOptionalStringParam(c echo.Context, paramName, defaultValue string) string {
	if value := c.QueryParam(paramName); value != "" {
		return value
	}
	return defaultValue
}

// ExtractOptionalIntParam extracts optional integer parameter with default
func ExtractOptionalIntParam(c echo.Context, paramName string, defaultValue int) int {
	valueStr := c.QueryParam(paramName)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ExtractIDListParam parses a comma-separated list of ids from a query
// parameter. An empty parameter yields nil; a malformed entry is an error.
func ExtractIDListParam(c echo.Context, paramName string) ([]uint, error) {
	raw := c.QueryParam(paramName)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, BadRequestError("Invalid %s parameter: %s is not a valid id", paramName, part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ExtractTimeParam parses an optional timestamp query parameter. RFC 3339 and
// plain dates are both accepted; a plain date means midnight UTC.
func ExtractTimeParam(c echo.Context, paramName string) (*time.Time, error) {
	raw := c.QueryParam(paramName)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, BadRequestError("Invalid %s parameter: expected RFC 3339 timestamp or YYYY-MM-DD date", paramName)
}
