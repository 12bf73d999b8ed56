package safari

import (
	"fmt"
	"os"
	"path/filepath"
)

// containerIDs maps the supported app variants to their sandbox container.
var containerIDs = map[string]string{
	"safari":  "com.apple.Safari",
	"preview": "com.apple.SafariTechnologyPreview",
}

// DefaultDBPath resolves the SafariTabs database location for the given app
// variant ("safari" or "preview") under the current user's container
// directory.
func DefaultDBPath(variant string) (string, error) {
	id, ok := containerIDs[variant]
	if !ok {
		return "", fmt.Errorf("unknown safari variant %q (want \"safari\" or \"preview\")", variant)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, "Library", "Containers", id,
		"Data", "Library", "Safari", "SafariTabs.db"), nil
}
