package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/pinfetch/internal/utils/path"
)

func TestHomeExpanderExpand(t *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "builder")
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return homeDirectory, nil
	})

	testCases := []struct {
		name      string
		candidate string
		expected  string
	}{
		{name: "bare_tilde", candidate: "~", expected: homeDirectory},
		{name: "tilde_slash", candidate: "~/packages", expected: filepath.Join(homeDirectory, "packages")},
		{name: "trims_whitespace", candidate: "  packages  ", expected: "packages"},
		{name: "other_user_unchanged", candidate: "~other/packages", expected: "~other/packages"},
		{name: "relative_unchanged", candidate: "vendor/packages", expected: "vendor/packages"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderKeepsPathWhenHomeUnavailable(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	require.Equal(t, "~/packages", expander.Expand("~/packages"))
}
