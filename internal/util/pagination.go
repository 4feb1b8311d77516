package util

import (
	"strconv"

	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate clamps page and size and converts them to offset and limit.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

func Meta(page, limit int, total int64) transport.PageMeta {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	return transport.PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
