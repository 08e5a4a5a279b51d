package domain

import (
	"fmt"
	"strings"
)

type AccountID string

type Account struct {
	ID    AccountID
	Name  string
	RefID string
	// Proxy is a raw proxy descriptor; it is only used when proxies are enabled.
	Proxy string
	Auth  Auth
}

type Auth struct {
	// SecretRef points to the secret-store entry holding the mini-app init data.
	SecretRef string
}

func InitDataSecretRef(id AccountID) string {
	return fmt.Sprintf("blum://%s/init_data", id)
}

func (a Account) Validate() error {
	if strings.TrimSpace(string(a.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.ContainsAny(string(a.ID), "/\\ ") {
		return fmt.Errorf("id %q must not contain slashes or spaces", a.ID)
	}

	return nil
}

func (a Account) DisplayName() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return string(a.ID)
}

// LaunchData is what the chat platform hands to the mini-app on launch.
type LaunchData struct {
	RefID    string
	InitData string
}

func (d LaunchData) Empty() bool {
	return strings.TrimSpace(d.InitData) == ""
}

// Profile is one entry of a bulk import file.
type Profile struct {
	Name  string
	Query string
	RefID string
	Proxy string
}

// AccountIDFromName derives a stable account id from a display name.
func AccountIDFromName(name string) AccountID {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return AccountID(strings.TrimRight(b.String(), "-"))
}
