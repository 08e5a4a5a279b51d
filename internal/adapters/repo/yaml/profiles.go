// Package yaml reads bulk account import files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/blum-farm-cli/internal/domain"
	yaml "gopkg.in/yaml.v3"
)

type profileSchema struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
	RefID string `yaml:"ref_id"`
	Proxy string `yaml:"proxy"`
}

type fileSchema struct {
	Profiles []profileSchema `yaml:"profiles"`
}

// LoadProfiles reads a profile list. The file may hold the list at the top level or
// under a "profiles" key; JSON files parse the same way.
func LoadProfiles(path string) ([]domain.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	return DecodeProfiles(bytes.NewReader(data))
}

func DecodeProfiles(r io.Reader) ([]domain.Profile, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode profiles file: %w", err)
	}

	var entries []profileSchema
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode profiles list: %w", err)
		}
	case yaml.MappingNode:
		var file fileSchema
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode profiles list: %w", err)
		}
		entries = file.Profiles
	default:
		return nil, fmt.Errorf("decode profiles file: expected a list of profiles")
	}

	profiles := make([]domain.Profile, 0, len(entries))
	for i, entry := range entries {
		profile := domain.Profile{
			Name:  strings.TrimSpace(entry.Name),
			Query: strings.TrimSpace(entry.Query),
			RefID: strings.TrimSpace(entry.RefID),
			Proxy: strings.TrimSpace(entry.Proxy),
		}
		if profile.Name == "" {
			return nil, fmt.Errorf("profile %d: name is required", i+1)
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}
