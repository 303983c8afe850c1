package pets

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a globally unique instance id of the form
// <templateKey>-<unix>-<token>.
func NewID(templateKey string, now int64) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return templateKey + "-" + strconv.FormatInt(now, 10) + "-" + token[:12]
}

// TemplateKeyFromID recovers the template key from a legacy instance id by
// stripping a trailing -<timestamp>-<random> pair or up to two -<index>
// segments. Ids without such a suffix are returned unchanged.
func TemplateKeyFromID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) >= 3 && isDigits(parts[len(parts)-2]) && !isDigits(parts[len(parts)-1]) && parts[len(parts)-1] != "" {
		return strings.Join(parts[:len(parts)-2], "-")
	}
	end := len(parts)
	for stripped := 0; stripped < 2 && end > 1 && isDigits(parts[end-1]); stripped++ {
		end--
	}
	return strings.Join(parts[:end], "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
