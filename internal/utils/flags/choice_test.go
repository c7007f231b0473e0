package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Log output encoding.",
			expectedOutput: "`<STRUCTURED|console>` Log output encoding.",
		},
		{
			name:           "DefaultLaterChoice",
			defaultChoice:  "test",
			choices:        []string{"build", "check_dependencies", "test", "start"},
			description:    "Development environment action.",
			expectedOutput: "`<build|check_dependencies|TEST|start>` Development environment action.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "git",
			choices:        []string{"git", "go-git"},
			expectedOutput: "`<GIT|go-git>`",
		},
		{
			name:           "DuplicatesAndWhitespace",
			defaultChoice:  "rpm",
			choices:        []string{" rpm ", "osc", "RPM", ""},
			description:    "Build requirement flavor.",
			expectedOutput: "`<RPM|osc>` Build requirement flavor.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}

func TestValidateChoice(t *testing.T) {
	choices := []string{"build", "check_dependencies", "test", "start"}
	require.True(t, ValidateChoice("BUILD", choices))
	require.True(t, ValidateChoice(" start ", choices))
	require.False(t, ValidateChoice("deploy", choices))
}
