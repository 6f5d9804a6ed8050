// Package filestore keeps the session of the terminal client in a YAML file readable by its owner only.
package filestore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/skillflow360/skillflow/core/session"
)

type SessionFile struct {
	path string
	now  func() time.Time
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path, now: time.Now}
}

func (f *SessionFile) Path() string { return f.path }

// Load returns session.ErrNotFound when no session was saved or when it expired.
func (f *SessionFile) Load() (session.Identity, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Identity{}, session.ErrNotFound
		}
		return session.Identity{}, errors.Wrap(err, "reading session file")
	}

	var ident session.Identity
	if err = yaml.Unmarshal(data, &ident); err != nil {
		return session.Identity{}, errors.Wrapf(err, "parsing %s", f.path)
	}
	if !ident.Authenticated() || ident.Expired(f.now()) {
		return session.Identity{}, session.ErrNotFound
	}
	return ident, nil
}

// Save replaces the stored session atomically.
func (f *SessionFile) Save(ident session.Identity) error {
	if ident.CreatedAt.IsZero() {
		ident.CreatedAt = f.now().UTC()
	}
	data, err := yaml.Marshal(ident)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating session directory")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating session file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err = tmp.Chmod(0o600); err == nil {
		_, err = tmp.Write(data)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "writing session file")
}

// Delete removes the stored session. Deleting a missing session is not an error.
func (f *SessionFile) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
