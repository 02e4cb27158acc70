package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds product and template names.
const maxNameLength = 128

// ValidateProductName validates the product name used as the export file stem.
// The name must be usable as a plain file name in any directory:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - No hidden files (leading dot)
func ValidateProductName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "product name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "product name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "product name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "product name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "product name cannot contain path traversal sequences (..)")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "product name cannot start with a dot")
	}
	return nil
}

// ValidateTemplateName validates a user-supplied template name.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "template name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "template name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "template name contains invalid control characters")
		}
	}
	return nil
}
