package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
)

// Provider loads the settings document and keeps it cached. The file's
// modification time is checked on every read, so edits made outside
// the process are picked up without a restart. Callers must treat the
// returned settings as read-only; mutations go through Save or the
// Mark helpers.
type Provider struct {
	path    string
	mu      sync.Mutex
	cached  *Settings
	modTime time.Time
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Path returns the settings file location.
func (p *Provider) Path() string { return p.path }

// Settings returns the current document, reloading it when the file
// changed on disk. A missing file yields defaults.
func (p *Provider) Settings() (*Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settingsLocked()
}

func (p *Provider) settingsLocked() (*Settings, error) {
	info, err := os.Stat(p.path)
	if errors.Is(err, os.ErrNotExist) {
		if p.cached == nil {
			s := Defaults()
			applyEnv(s)
			p.cached = s
		}
		return p.cached, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat settings file: %w", err)
	}

	if p.cached != nil && info.ModTime().Equal(p.modTime) {
		return p.cached, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	s := Defaults()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", p.path, err)
	}
	applyEnv(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}

	p.cached = s
	p.modTime = info.ModTime()
	return s, nil
}

// Reload drops the cache and reads the file again.
func (p *Provider) Reload() (*Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
	p.modTime = time.Time{}
	return p.settingsLocked()
}

// Save writes the document atomically and makes it the cached copy.
func (p *Provider) Save(s *Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveLocked(s)
}

func (p *Provider) saveLocked(s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("stat settings file: %w", err)
	}
	p.cached = s
	p.modTime = info.ModTime()
	return nil
}

// MarkRuleProcessed stamps one recurring rule with the month it was
// last materialized in and persists the document.
func (p *Provider) MarkRuleProcessed(index int, monthKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.settingsLocked()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.Data.Recurring) {
		return fmt.Errorf("recurring rule index %d out of range", index)
	}
	s.Data.Recurring[index].LastProcessed = monthKey
	return p.saveLocked(s)
}

// MarkReportSent records the date of the last automatic monthly report
// and persists the document.
func (p *Provider) MarkReportSent(date string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.settingsLocked()
	if err != nil {
		return err
	}
	s.Email.LastReportSent = date
	return p.saveLocked(s)
}
