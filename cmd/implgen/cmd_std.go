package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "std <class>...",
		Short: "Generate stubs for standard library types",
		Long: `Generate <Name>Impl.java in the default package for each named
standard library interface or abstract class, e.g. java.util.AbstractSet or
java.util.Map$Entry.

The runtime is taken from --java-home, JAVA_HOME or the java on PATH.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, release, err := a.newGenerator(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			for _, name := range args {
				fqn, err := gen.ImplementFromStandardLibrary(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fqn)
			}
			return nil
		},
	}
}
