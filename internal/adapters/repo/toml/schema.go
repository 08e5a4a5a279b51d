package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func (s fileSchema) indexOf(id string) int {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

type accountSchema struct {
	ID    string     `toml:"id"`
	Name  string     `toml:"name"`
	RefID string     `toml:"ref_id,omitempty"`
	Proxy string     `toml:"proxy,omitempty"`
	Auth  authSchema `toml:"auth"`
}

type authSchema struct {
	SecretRef string `toml:"secret_ref"`
}
