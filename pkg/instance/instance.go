package instance

import (
	"os"

	"github.com/evergreenfarmers/storefront/pkg/env"
)

// ID names this process in logs: the platform dyno name when set, then the
// host name, then "local".
func ID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
