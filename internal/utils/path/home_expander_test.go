package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/log2timeline/devtools/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/developer"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		provider      pathutils.HomeDirectoryProvider
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "tilde_only",
			candidatePath: "~",
			expectedPath:  testHomeDirectoryConstant,
		},
		{
			name:          "tilde_with_subdirectory",
			candidatePath: "~/.config/devtools",
			expectedPath:  filepath.Join(testHomeDirectoryConstant, ".config", "devtools"),
		},
		{
			name:          "absolute_path_unchanged",
			candidatePath: "/etc/devtools",
			expectedPath:  "/etc/devtools",
		},
		{
			name:          "other_user_unchanged",
			candidatePath: "~other/config",
			expectedPath:  "~other/config",
		},
		{
			name: "lookup_failure_unchanged",
			provider: func() (string, error) {
				return "", errors.New("no home")
			},
			candidatePath: "~/config",
			expectedPath:  "~/config",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) {
					return testHomeDirectoryConstant, nil
				}
			}
			expander := pathutils.NewHomeExpanderWithProvider(provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}
