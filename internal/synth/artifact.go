package synth

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Artifact wraps one generated audio file. The file is not cleaned up
// automatically; the owner must call Release before replacing the artifact
// or ending the session.
type Artifact struct {
	path string

	mu       sync.Mutex
	released bool
}

// Path returns the location of the audio file, or "" after Release.
func (a *Artifact) Path() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ""
	}
	return a.path
}

// Release deletes the underlying file. Safe to call more than once; a file
// already gone is not an error.
func (a *Artifact) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return nil
	}
	a.released = true

	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	log.Debug().Str("file", a.path).Msg("Audio artifact released")
	return nil
}
