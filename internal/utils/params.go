package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("Invalid ID")

// GetResourceID returns the :id path parameter. Anything that is not a
// UUID cannot name a stored record and is rejected.
func GetResourceID(ctx *gin.Context) (string, error) {
	id := strings.TrimSpace(ctx.Param("id"))

	if id == "" {
		return "", ErrInvalidID
	}

	parsed, err := uuid.Parse(id)

	if err != nil {
		return "", ErrInvalidID
	}

	return parsed.String(), nil
}

// GetLimit reads a positive integer query parameter, falling back to def
// when it is absent or malformed.
func GetLimit(ctx *gin.Context, name string, def int) int {
	raw := ctx.Query(name)

	if raw == "" {
		return def
	}

	limit, err := strconv.Atoi(raw)

	if err != nil || limit < 1 {
		return def
	}

	return limit
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)

	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
