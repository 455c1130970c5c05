package service

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"karmafeed/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxPostContentLen    = 50000
	maxCommentContentLen = 10000
)

var contentPolicy = bluemonday.StrictPolicy()

// sanitizeContent strips all markup, trims surrounding whitespace and checks
// the result is non-empty and at most maxLen characters.
func sanitizeContent(content string, maxLen int, kind string) (string, error) {
	// StrictPolicy HTML-escapes the text it keeps; content is stored as plain text.
	clean := strings.TrimSpace(html.UnescapeString(contentPolicy.Sanitize(content)))
	if clean == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(clean) > maxLen {
		return "", models.NewValidationError(fmt.Sprintf("%s too long (max %d characters)", kind, maxLen))
	}
	return clean, nil
}
