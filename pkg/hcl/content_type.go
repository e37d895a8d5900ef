package hcl

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
)

const (
	// ContentTypeHCL is the custom MIME type for HCL requests
	ContentTypeHCL = "application/vnd.hcl"

	// ContentTypeJSON is the standard MIME type for JSON
	ContentTypeJSON = "application/json"
)

var hclAssignPattern = regexp.MustCompile(`(?m)^\s*[a-zA-Z_][a-zA-Z0-9_]*\s*[={]`)

// DetectContentType determines whether a request body is JSON or HCL, from
// the Content-Type header when present and by content inspection otherwise.
// The body is reset so callers can read it again.
func DetectContentType(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case ContentTypeHCL:
				return ContentTypeHCL, nil
			case ContentTypeJSON:
				return ContentTypeJSON, nil
			}
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		// JSON starts with { or [; HCL starts with an identifier.
		if trimmed[0] == '{' || trimmed[0] == '[' {
			return ContentTypeJSON, nil
		}
		if hclAssignPattern.Match(trimmed) {
			return ContentTypeHCL, nil
		}
	}

	return ContentTypeJSON, nil
}
