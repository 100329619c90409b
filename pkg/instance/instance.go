package instance

import (
	"os"
	"strings"
)

// GetID returns the identifier of the running process: USERS_INSTANCE_ID,
// then the platform DYNO name, then the hostname.
func GetID() string {
	for _, key := range []string{"USERS_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
