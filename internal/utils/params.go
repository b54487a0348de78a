package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingID = errors.New("ID not found")
	ErrInvalidID = errors.New("invalid ID")
)

// GetID parses the ":id" path parameter as a positive integer.
func GetID(ctx *gin.Context) (uint, error) {
	return ParseID(ctx.Param("id"))
}

// ParseID parses a positive integer record id.
func ParseID(raw string) (uint, error) {
	if raw == "" {
		return 0, ErrMissingID
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return uint(id), nil
}
