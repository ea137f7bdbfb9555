package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dir <classes> <class>",
		Short: "Generate a stub for a type compiled into a directory or jar",
		Long: `Generate <Name>Impl.java for an interface or abstract class loaded
from a directory of class files or a jar.

The stub keeps the type's package unless it starts with the builtin
prefix. Supertypes are looked up in the Java runtime and the configured
class path first.

Examples:
  implgen dir build/classes com.example.Repository
  implgen dir -o src/test/java lib/api.jar com.example.Service`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, release, err := a.newGenerator(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			fqn, err := gen.ImplementFromDirectory(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fqn)
			return nil
		},
	}
}
