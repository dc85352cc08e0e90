// Package config loads named presets of the matcher/query option tables
// (§6: case_ignore, strsim_threshold, squash, merge, separator) from YAML,
// letting a host keep reusable option bundles in a file instead of wiring
// flags itself.
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile is one named option preset.
type Profile struct {
	Name            string  `yaml:"name"`
	CaseIgnore      bool    `yaml:"case_ignore"`
	StrsimThreshold float64 `yaml:"strsim_threshold"`
	Squash          bool    `yaml:"squash"`
	Merge           bool    `yaml:"merge"`
	Separator       string  `yaml:"separator"`
}

// DefaultStrsimThreshold mirrors matcher.DefaultStrsimThreshold; config
// does not import matcher to keep this package dependency-light.
const DefaultStrsimThreshold = 0.8

// DefaultSeparator mirrors query.DefaultSeparator.
const DefaultSeparator = "|"

// DefaultProfile returns the zero-configuration preset: case-sensitive
// comparison, the default similarity threshold, and no squash/merge.
func DefaultProfile() Profile {
	return Profile{
		Name:            "default",
		StrsimThreshold: DefaultStrsimThreshold,
		Separator:       DefaultSeparator,
	}
}

// ProfileSet is a named collection of profiles loaded from a single YAML
// document, keyed by Profile.Name.
type ProfileSet map[string]Profile

// LoadProfiles parses a YAML document listing one or more profiles.
func LoadProfiles(data []byte) (ProfileSet, error) {
	var profiles []Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, errors.Wrap(err, "config: invalid profile document")
	}
	set := make(ProfileSet, len(profiles))
	for _, p := range profiles {
		if p.Name == "" {
			return nil, errors.New("config: profile is missing a name")
		}
		if p.Separator == "" {
			p.Separator = DefaultSeparator
		}
		if p.StrsimThreshold == 0 {
			p.StrsimThreshold = DefaultStrsimThreshold
		}
		set[p.Name] = p
	}
	return set, nil
}

// LoadProfilesFile reads and parses a profile document from path.
func LoadProfilesFile(path string) (ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %q", path)
	}
	return LoadProfiles(data)
}

// Lookup returns the named profile, or an error if it is not present.
func (s ProfileSet) Lookup(name string) (Profile, error) {
	p, ok := s[name]
	if !ok {
		return Profile{}, fmt.Errorf("config: no such profile %q", name)
	}
	return p, nil
}
