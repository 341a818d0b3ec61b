// Package validator provides input validation for upload requests. It
// enforces name and content length constraints and returns per-field error
// details.
package validator

import (
	"fmt"
	"strings"

	"github.com/Un3xpecteed/Search-Engine/internal/ingestion"
)

const (
	maxNameLength    = 1024
	maxContentLength = 1048576
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateUploadRequest checks that the name and content of the request meet
// the required length constraints and returns a ValidationError if not.
// The name is trimmed in place so "doc1" and " doc1 " address the same
// document downstream. Whether the content actually contains indexable
// words is the indexer's call, not a validation concern.
func ValidateUploadRequest(req *ingestion.UploadRequest) error {
	errs := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	req.Name = name
	if name == "" {
		errs["name"] = "name is required"
	} else if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	if req.Content == "" {
		errs["content"] = "content is required"
	} else if len(req.Content) > maxContentLength {
		errs["content"] = fmt.Sprintf("content must be at most %d characters", maxContentLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
