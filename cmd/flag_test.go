package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnumTestCommand() (*cobra.Command, *string) {
	command := &cobra.Command{
		Use:  "enumtest",
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	var value string
	AddEnumFlagP(command, &value, "sort", "", &EnumFlag{
		Description: "Sort field",
		Options:     [][2]string{{"none", ""}, {"title", ""}, {"played", "last played time"}},
	})
	return command, &value
}

func TestEnumFlagDefault(t *testing.T) {
	command, value := newEnumTestCommand()
	assert.Equal(t, "none", *value)
	flag := command.Flags().Lookup("sort")
	require.NotNil(t, flag)
	assert.Equal(t, "none", flag.DefValue)
	assert.Contains(t, flag.Usage, "none|title|played")
}

func TestEnumFlagValidation(t *testing.T) {
	command, value := newEnumTestCommand()
	*value = "played"
	assert.NoError(t, command.PreRunE(command, nil))

	*value = "foobar"
	err := command.PreRunE(command, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"foobar"`)
	assert.Contains(t, err.Error(), "none|title|played")
}

func TestEnumFlagChainsPreRunE(t *testing.T) {
	called := false
	command := &cobra.Command{
		Use:     "enumtest",
		PreRunE: func(cmd *cobra.Command, args []string) error { called = true; return nil },
		RunE:    func(cmd *cobra.Command, args []string) error { return nil },
	}
	var value string
	AddEnumFlagP(command, &value, "order", "", &EnumFlag{
		Description: "Order",
		Options:     [][2]string{{"asc", ""}, {"desc", ""}},
	})
	require.NoError(t, command.PreRunE(command, nil))
	assert.True(t, called)
}
