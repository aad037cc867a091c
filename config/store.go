package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/robmorgan/kinetic/profile"
)

// ErrRestartRequired is returned by Reload when the new file changes how the fixture is patched.
// The motors are built from the patch and profiles once at startup, so those changes need a restart.
var ErrRestartRequired = errors.New("patch or profile changes need a restart")

// Store holds the live configuration. The control loop reads it once per cycle, so a Set or Reload
// takes effect on the next cycle.
type Store struct {
	mu  sync.RWMutex
	cfg KineticConfig
}

func NewStore(cfg KineticConfig) *Store {
	return &Store{cfg: cfg}
}

// Get returns the current configuration.
func (s *Store) Get() KineticConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the current configuration.
func (s *Store) Set(cfg KineticConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// patchedProfiles returns the profiles the patched motors run in.
func (c KineticConfig) patchedProfiles() []profile.Profile {
	out := make([]profile.Profile, 0, len(c.Patch.Motors))
	for _, m := range c.Patch.Motors {
		out = append(out, c.FixtureProfiles[m.Profile])
	}
	return out
}

// Reload loads and validates the file at path. The current configuration is kept if either step
// fails, or if the file changes the patch or a profile a patched motor runs in.
func (s *Store) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !reflect.DeepEqual(s.cfg.Patch, cfg.Patch) || !reflect.DeepEqual(s.cfg.patchedProfiles(), cfg.patchedProfiles()) {
		return ErrRestartRequired
	}
	s.cfg = cfg
	return nil
}
