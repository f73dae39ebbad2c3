// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ProfileLoader encodes profiles on disk. Ext is the file extension of the
// profiles it manages, other files in the directory are ignored.
type ProfileLoader interface {
	Unmarshal([]byte) (Profile, error)
	Marshal(Profile) ([]byte, error)
	Ext() string
}

// JSONLoader stores profiles as json objects. Missing fields keep the value
// of DefaultProfile.
type JSONLoader struct{}

func (l *JSONLoader) Unmarshal(b []byte) (Profile, error) {
	p := DefaultProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (l *JSONLoader) Marshal(p Profile) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

func (l *JSONLoader) Ext() string { return ".json" }

// YAMLLoader stores profiles as yaml documents. Missing fields keep the value
// of DefaultProfile.
type YAMLLoader struct{}

func (l *YAMLLoader) Unmarshal(b []byte) (Profile, error) {
	p := DefaultProfile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (l *YAMLLoader) Marshal(p Profile) ([]byte, error) {
	return yaml.Marshal(p)
}

func (l *YAMLLoader) Ext() string { return ".yaml" }

// LoaderFor returns the loader registered for a format name, "json" or
// "yaml".
func LoaderFor(format string) (ProfileLoader, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONLoader{}, nil
	case "yaml", "yml":
		return &YAMLLoader{}, nil
	default:
		return nil, fmt.Errorf("unknown profile format %q", format)
	}
}

// DefaultConfigDir is the directory holding the profiles when none is given,
// $XDG_CONFIG_HOME/byteunit.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "byteunit")
}

// ConfigDir manages named profiles in a directory. The profile in use is
// designated by a `current` symlink.
type ConfigDir struct {
	path   string
	loader ProfileLoader
}

const currentLink = "current"

var ErrNoCurrent = errors.New("no current profile")

// NewConfigDir opens an existing directory.
func NewConfigDir(path string, loader ProfileLoader) (*ConfigDir, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}

	return &ConfigDir{path, loader}, nil
}

// CreateConfigDir opens path, creating it first if needed.
func CreateConfigDir(path string, loader ProfileLoader) (*ConfigDir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating config dir: %w", err)
	}
	return NewConfigDir(path, loader)
}

func (c *ConfigDir) Path() string { return c.path }

func (c *ConfigDir) LoadPath(path string) (Profile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed loading profile at %s: %w", path, err)
	}

	p, err := c.loader.Unmarshal(bytes)
	if err != nil {
		return Profile{}, fmt.Errorf("failed parsing profile at %s: %w", path, err)
	}
	return p, p.Validate()
}

func (c *ConfigDir) DumpPath(path string, p Profile) error {
	bytes, err := c.loader.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed marshaling profile at %s: %w", path, err)
	}

	return os.WriteFile(path, bytes, 0o644)
}

func (c *ConfigDir) profilePath(name string) (string, error) {
	if name == "" || name == currentLink || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid profile name %q", name)
	}
	return filepath.Join(c.path, name) + c.loader.Ext(), nil
}

func (c *ConfigDir) Get(name string) (Profile, error) {
	path, err := c.profilePath(name)
	if err != nil {
		return Profile{}, err
	}
	return c.LoadPath(path)
}

func (c *ConfigDir) Set(name string, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	path, err := c.profilePath(name)
	if err != nil {
		return err
	}
	return c.DumpPath(path, p)
}

// Use points the current link to an existing profile, replacing the previous
// link.
func (c *ConfigDir) Use(name string) error {
	path, err := c.profilePath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("unknown profile %q: %w", name, err)
	}

	linkPath := filepath.Join(c.path, currentLink)
	if err := os.Remove(linkPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed removing current link: %w", err)
	}
	return os.Symlink(path, linkPath)
}

func (c *ConfigDir) profileName(path string) string {
	return filepath.Base(strings.TrimSuffix(path, c.loader.Ext()))
}

// List returns the profile names in lexical order.
func (c *ConfigDir) List() ([]string, error) {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(entries))
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != c.loader.Ext() || !entry.Type().IsRegular() {
			continue
		}

		list = append(list, c.profileName(entry.Name()))
	}
	sort.Strings(list)

	return list, nil
}

// Current returns the name and content of the profile in use. It fails with
// ErrNoCurrent when no profile was selected.
func (c *ConfigDir) Current() (string, Profile, error) {
	linkPath := filepath.Join(c.path, currentLink)
	info, err := os.Lstat(linkPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", Profile{}, ErrNoCurrent
	} else if err != nil {
		return "", Profile{}, err
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return "", Profile{}, errors.New("invalid current link")
	}

	currentPath, err := os.Readlink(linkPath)
	if err != nil {
		return "", Profile{}, fmt.Errorf("failed loading current link: %w", err)
	}

	p, err := c.LoadPath(currentPath)
	if err != nil {
		return "", Profile{}, fmt.Errorf("failed loading current profile: %w", err)
	}
	return c.profileName(currentPath), p, nil
}

// CurrentOrDefault is Current falling back to DefaultProfile, named
// "default", when no profile was selected.
func (c *ConfigDir) CurrentOrDefault() (string, Profile, error) {
	name, p, err := c.Current()
	if errors.Is(err, ErrNoCurrent) {
		return "default", DefaultProfile, nil
	}
	return name, p, err
}
