package fetch_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pinfetch/internal/fetch"
)

func TestFileWorkspaceLockerExcludesConcurrentRuns(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	locker := fetch.FileWorkspaceLocker{}

	firstLease, firstError := locker.Acquire(outputDirectory)
	require.NoError(testInstance, firstError)
	require.FileExists(testInstance, filepath.Join(outputDirectory, fetch.LockFileName))

	_, secondError := locker.Acquire(outputDirectory)
	require.ErrorIs(testInstance, secondError, fetch.ErrWorkspaceLocked)

	require.NoError(testInstance, firstLease.Release())

	thirdLease, thirdError := locker.Acquire(outputDirectory)
	require.NoError(testInstance, thirdError)
	require.NoError(testInstance, thirdLease.Release())
}

func TestFileWorkspaceLockerRequiresDirectory(testInstance *testing.T) {
	missingDirectory := filepath.Join(testInstance.TempDir(), "missing")

	_, acquireError := fetch.FileWorkspaceLocker{}.Acquire(missingDirectory)
	require.Error(testInstance, acquireError)
	require.NotErrorIs(testInstance, acquireError, fetch.ErrWorkspaceLocked)
}
