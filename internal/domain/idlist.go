package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidIDList is returned when an id list cannot be normalized.
var ErrInvalidIDList = errors.New("expected a non-empty list of ids")

// ParseIDList accepts a JSON array of strings, or a JSON string whose content
// is such an array, and returns the ids trimmed and de-duplicated in order.
// A bare unquoted array text, as sent in multipart form fields, is accepted too.
func ParseIDList(raw []byte) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrInvalidIDList
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, ErrInvalidIDList
		}
		raw = []byte(strings.TrimSpace(encoded))
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrInvalidIDList
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, ErrInvalidIDList
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, ErrInvalidIDList
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrInvalidIDList
	}
	return out, nil
}
