package validators

import (
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
)

// ParseQueryString returns the trimmed query value, defaultVal when absent or
// blank, and a validation error when it is longer than maxLen.
func ParseQueryString(r *http.Request, key, defaultVal string, maxLen int) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	if maxLen > 0 && len(raw) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").
			WithDetails(map[string]string{key: fmt.Sprintf("must be at most %d characters", maxLen)})
	}
	return SanitizeString(raw, maxLen), nil
}
