package cli

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
)

// Script is a scripted host session: the device stamp, the current user
// and the events the host logs, in order.
type Script struct {
	Stamp string          `yaml:"stamp"`
	User  *host.StaticUser `yaml:"user"`
	Steps []Step          `yaml:"steps"`
}

// Step is one host call. Exactly one of Event and Commerce is set.
type Step struct {
	Event    *host.Event         `yaml:"event"`
	Commerce *host.CommerceEvent `yaml:"commerce"`
}

// Name returns the step's event name for output.
func (s Step) Name() string {
	if s.Event != nil {
		return s.Event.Name
	}
	if s.Commerce != nil {
		return s.Commerce.DisplayName()
	}
	return ""
}

// ErrEmptyScript is returned for a script without steps.
var ErrEmptyScript = errors.New("script has no steps")

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	for i, step := range s.Steps {
		if (step.Event == nil) == (step.Commerce == nil) {
			return nil, fmt.Errorf("step %d: exactly one of event or commerce must be set", i+1)
		}
	}
	return &s, nil
}

// Host returns a host serving the script's user and stamp.
func (s *Script) Host() *host.StaticHost {
	h := &host.StaticHost{Stamp: s.Stamp}
	if s.User != nil {
		h.User = s.User
	}
	return h
}
