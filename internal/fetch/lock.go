package fetch

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	// LockFileName is created inside the output directory while a run is in progress.
	LockFileName = ".pinfetch.lock"

	lockAcquireErrorTemplateConstant = "unable to lock %s: %w"
	lockHeldTemplateConstant         = "%w: %s"
)

// WorkspaceLease is held for the duration of a run.
type WorkspaceLease interface {
	Release() error
}

// WorkspaceLocker grants exclusive use of an output directory.
type WorkspaceLocker interface {
	Acquire(outputDirectory string) (WorkspaceLease, error)
}

// FileWorkspaceLocker takes an advisory lock on a file inside the output directory.
type FileWorkspaceLocker struct{}

// Acquire locks outputDirectory without blocking. The directory must already exist.
func (FileWorkspaceLocker) Acquire(outputDirectory string) (WorkspaceLease, error) {
	lockPath := filepath.Join(outputDirectory, LockFileName)
	fileLock := flock.New(lockPath)

	locked, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf(lockAcquireErrorTemplateConstant, lockPath, lockError)
	}
	if !locked {
		return nil, fmt.Errorf(lockHeldTemplateConstant, ErrWorkspaceLocked, lockPath)
	}
	return &fileWorkspaceLease{fileLock: fileLock}, nil
}

type fileWorkspaceLease struct {
	fileLock *flock.Flock
}

func (lease *fileWorkspaceLease) Release() error {
	return lease.fileLock.Unlock()
}
