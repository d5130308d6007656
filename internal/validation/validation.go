// Package validation provides upload input checks and filename sanitization.
package validation

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Validator checks uploaded files against the configured constraints.
type Validator struct {
	allowedExtensions map[string]struct{}
}

// New builds a Validator from the allowed extension list (lowercase,
// without leading dots).
func New(allowedExtensions []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Validator{allowedExtensions: allowed}
}

// AllowedFile reports whether the filename carries an allowed video
// extension.
func (v *Validator) AllowedFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := v.allowedExtensions[ext]
	return ok
}

// SanitizeFilename reduces a client-supplied filename to a safe basename:
// path components are stripped and anything outside [A-Za-z0-9._-] is
// collapsed to underscores. Returns "" when nothing safe remains.
func SanitizeFilename(filename string) string {
	// Strip directories from both path flavors.
	name := strings.ReplaceAll(filename, `\`, "/")
	name = filepath.Base(name)

	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if name == "" || name == "_" {
		return ""
	}
	return name
}
