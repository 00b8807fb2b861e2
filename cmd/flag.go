package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/util"
)

// EnumFlag is a flag whose value must be one of the predefined options.
// The first option is the default. The second element of each option is
// an optional description used in shell completions.
type EnumFlag struct {
	Description string
	Options     [][2]string // array of [value, description]
}

func (f *EnumFlag) values() []string {
	return util.Map(f.Options, func(option [2]string) string { return option[0] })
}

// AddEnumFlagP adds an enum type flag to command.
// It validates the provided value in the command's PreRunE.
func AddEnumFlagP(command *cobra.Command, p *string, name string, shorthand string, flag *EnumFlag) {
	command.Flags().StringVarP(p, name, shorthand, flag.Options[0][0],
		fmt.Sprintf("%s. Available: %s", flag.Description, strings.Join(flag.values(), "|")))
	command.RegisterFlagCompletionFunc(name,
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return util.Map(flag.Options, func(option [2]string) string {
				if option[1] != "" {
					return option[0] + "\t" + option[1]
				}
				return option[0]
			}), cobra.ShellCompDirectiveNoFileComp
		})
	preRunE := command.PreRunE
	command.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(flag.values(), *p) {
			return fmt.Errorf("invalid value %q of flag %q. Available: %s",
				*p, name, strings.Join(flag.values(), "|"))
		}
		if preRunE != nil {
			return preRunE(cmd, args)
		}
		return nil
	}
}
