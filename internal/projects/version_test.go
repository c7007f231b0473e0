package projects_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/projects"
)

func TestParseVersionRequirement(testInstance *testing.T) {
	testCases := []struct {
		name                string
		rawRequirement      string
		expectedConstraints []string
		expectError         bool
	}{
		{
			name: "empty_requirement",
		},
		{
			name:                "date_version",
			rawRequirement:      ">=20180630",
			expectedConstraints: []string{">=20180630"},
		},
		{
			name:                "bounded_range",
			rawRequirement:      ">=1.2.3,<2",
			expectedConstraints: []string{">=1.2.3", "<2"},
		},
		{
			name:                "exact_with_release",
			rawRequirement:      "==3.10-1",
			expectedConstraints: []string{"==3.10.1"},
		},
		{
			name:           "too_many_parts",
			rawRequirement: ">=1,<2,<3",
			expectError:    true,
		},
		{
			name:           "second_part_not_upper_bound",
			rawRequirement: ">=1,>=2",
			expectError:    true,
		},
		{
			name:           "missing_operator",
			rawRequirement: "1.2",
			expectError:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			requirement, parseError := projects.ParseVersionRequirement(testCase.rawRequirement)
			if testCase.expectError {
				require.ErrorIs(testInstance, parseError, projects.ErrUnsupportedVersion)
				require.True(testInstance, requirement.IsEmpty())
				return
			}
			require.NoError(testInstance, parseError)

			renderedConstraints := make([]string, 0, len(requirement.Constraints))
			for _, constraint := range requirement.Constraints {
				renderedConstraints = append(renderedConstraints, constraint.String())
			}
			if len(testCase.expectedConstraints) == 0 {
				require.True(testInstance, requirement.IsEmpty())
				return
			}
			require.Equal(testInstance, testCase.expectedConstraints, renderedConstraints)
			require.Equal(testInstance, testCase.rawRequirement, requirement.String())
		})
	}
}
