package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--checkout"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--checkout=yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitTrueUppercase", arguments: []string{"--checkout=TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--checkout=no"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{}

			var checkoutEnabled bool
			AddToggleFlag(command.Flags(), &checkoutEnabled, "checkout", false, "Switch to the branch")

			require.NoError(testInstance, command.ParseFlags(testCase.arguments))
			require.Equal(testInstance, testCase.expectedValue, checkoutEnabled)

			flag := command.Flags().Lookup("checkout")
			require.NotNil(testInstance, flag)
			require.Equal(testInstance, testCase.expectedChanged, flag.Changed)
			require.Equal(testInstance, "`<yes|NO>` Switch to the branch", flag.Usage)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}

	checkoutEnabled := false
	AddToggleFlag(command.Flags(), &checkoutEnabled, "checkout", true, "")
	require.True(testInstance, checkoutEnabled)

	require.Error(testInstance, command.ParseFlags([]string{"--checkout=maybe"}))
	require.True(testInstance, checkoutEnabled)
	require.Equal(testInstance, "`<YES|no>`", command.Flags().Lookup("checkout").Usage)
}
