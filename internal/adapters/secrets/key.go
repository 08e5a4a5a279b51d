// Package secrets holds helpers shared by the secret-store backends.
package secrets

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var ErrEmptyKey = errors.New("secret key is empty")

// RelativePath maps a secret reference such as "blum://main/init_data" to a
// slash-separated relative path ("blum/main/init_data") that backends can store
// under their own root.
func RelativePath(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", ErrEmptyKey
	}

	if scheme, rest, ok := strings.Cut(trimmed, "://"); ok {
		if scheme == "" || strings.ContainsAny(scheme, "/\\") {
			return "", fmt.Errorf("invalid secret key %q", key)
		}
		trimmed = scheme + "/" + rest
	}

	if strings.HasPrefix(trimmed, "/") || strings.Contains(trimmed, "\\") {
		return "", fmt.Errorf("invalid secret key %q", key)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid secret key %q", key)
	}

	return cleaned, nil
}
