package pagination

import (
	"math"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is applied when the caller omits or mangles the limit param.
	DefaultLimit = 10
	// MaxLimit caps the page size regardless of what the caller asks for.
	MaxLimit = 100
)

// Params captures a parsed page/limit pair. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the row offset for SQL queries.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes a result page for API responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ParseQuery extracts page/limit from query values, falling back to defaults
// for missing, non-numeric, or out-of-range input.
func ParseQuery(values url.Values) Params {
	return Normalize(atoiOr(values.Get("page"), 1), atoiOr(values.Get("limit"), DefaultLimit))
}

// Normalize clamps raw page/limit values into the supported range.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// NewMeta computes page metadata for a total row count.
func NewMeta(params Params, total int64) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}
	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
