package common

import (
	"net/http"
	"strconv"
	"time"
)

// ListParams are the cursor-pagination parameters shared by every list
// endpoint. Limit zero lets the storage layer apply its default.
type ListParams struct {
	Cursor      string     `json:"cursor,omitempty"`
	Limit       int32      `json:"limit,omitempty"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
}

// ExtractListParams extracts cursor pagination parameters from the request's
// query string. Unparseable values fall back to their zero value; the storage
// layer rejects tampered cursors itself.
func ExtractListParams(r *http.Request) ListParams {
	params := ListParams{
		Cursor: r.URL.Query().Get("cursor"),
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.ParseInt(limit, 10, 32); err == nil && n > 0 {
			params.Limit = int32(n)
		}
	}

	if from := r.URL.Query().Get("created_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			params.CreatedFrom = &t
		}
	}
	if to := r.URL.Query().Get("created_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			params.CreatedTo = &t
		}
	}

	return params
}
