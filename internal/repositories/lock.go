package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/plbackup/internal/shared"
)

const cycleLockOwnerFile = "owner.json"

// CycleLock is held by the one cycle allowed to touch a playlist's files at a time.
type CycleLock struct {
	lockDir string
}

type cycleLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

// LockPath returns the lock directory for playlistName in outputDir.
func LockPath(outputDir, playlistName string) string {
	return filepath.Join(outputDir, "."+playlistName+".lock")
}

// AcquireCycleLock creates the playlist's lock directory, failing with [shared.ErrLocked] when it already exists.
func AcquireCycleLock(outputDir, playlistName string) (CycleLock, error) {
	if strings.TrimSpace(playlistName) == "" {
		return CycleLock{}, fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	lockDir := LockPath(outputDir, playlistName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			var owner cycleLockOwner
			if data, readErr := os.ReadFile(filepath.Join(lockDir, cycleLockOwnerFile)); readErr == nil &&
				json.Unmarshal(data, &owner) == nil && owner.PID > 0 {
				return CycleLock{}, fmt.Errorf("%w: %s (pid=%d created_at=%s host=%s)",
					shared.ErrLocked, playlistName, owner.PID, owner.CreatedAt, owner.Hostname)
			}
			return CycleLock{}, fmt.Errorf("%w: %s", shared.ErrLocked, playlistName)
		}
		return CycleLock{}, fmt.Errorf("%w: acquire lock for %s: %v", shared.ErrIO, playlistName, err)
	}

	owner := cycleLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	data, err := json.Marshal(owner)
	if err == nil {
		err = os.WriteFile(filepath.Join(lockDir, cycleLockOwnerFile), data, 0o644)
	}
	if err != nil {
		_ = os.Remove(lockDir)
		return CycleLock{}, fmt.Errorf("%w: write lock owner for %s: %v", shared.ErrIO, playlistName, err)
	}

	return CycleLock{lockDir: lockDir}, nil
}

// Release removes the lock directory. Releasing a zero lock is a no-op.
func (l CycleLock) Release() error {
	if l.lockDir == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, cycleLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "unknown"
	}
	return strings.TrimSpace(host)
}
