// Package http exposes the study tracker over a small JSON API.
//
// This file holds the helpers that turn query strings and request bodies
// into tracker inputs. Bodies may be JSON objects or form-encoded.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"studytracker/internal/core"
)

// maxBodyBytes caps entry submissions.
const maxBodyBytes = 64 << 10

var errMalformedQuery = errors.New("malformed query")

// SnapshotParams holds the display selection for GET /api/snapshot.
type SnapshotParams struct {
	Week    core.Week
	ShowAll bool
}

// ParseSnapshotParams reads week and all from the query string. A missing
// week selects the first week; a missing all means false. Non-numeric weeks
// and non-boolean all values wrap errMalformedQuery; weeks out of range wrap
// core.ErrUnknownWeek.
func ParseSnapshotParams(query url.Values) (SnapshotParams, error) {
	params := SnapshotParams{Week: core.FirstWeek}

	if v := strings.TrimSpace(query.Get("week")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return SnapshotParams{}, fmt.Errorf("%w: week %q", errMalformedQuery, v)
		}
		w := core.Week(n)
		if err := w.Validate(); err != nil {
			return SnapshotParams{}, err
		}
		params.Week = w
	}
	if v := strings.TrimSpace(query.Get("all")); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return SnapshotParams{}, fmt.Errorf("%w: all %q", errMalformedQuery, v)
		}
		params.ShowAll = all
	}

	return params, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body of r once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to the text the tracker parses.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
