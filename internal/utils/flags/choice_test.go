package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name          string
		defaultChoice string
		choices       []string
		description   string
		expectedUsage string
	}{
		{
			name:          "default_highlighted",
			defaultChoice: "continue",
			choices:       []string{"continue", "abort"},
			description:   "failure policy",
			expectedUsage: "`<CONTINUE|abort>` failure policy",
		},
		{
			name:          "without_description",
			defaultChoice: "console",
			choices:       []string{"console", "structured"},
			expectedUsage: "`<CONSOLE|structured>`",
		},
		{
			name:          "duplicates_and_blanks_removed",
			defaultChoice: "abort",
			choices:       []string{"abort", " ", "Abort", "continue"},
			description:   "failure policy",
			expectedUsage: "`<ABORT|continue>` failure policy",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedUsage, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
