package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/implgen/generator"
	"github.com/dhamidi/implgen/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Serve stub generation over stdio as the workspace commands
implgen.implementFromDirectory (arguments: classes, class) and
implgen.implementFromStandardLibrary (argument: class).

Relative paths are resolved against the workspace root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, release, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			opts := []generator.Option{generator.WithBuiltinPrefix(a.cfg.BuiltinPrefix)}
			if runtime != nil {
				opts = append(opts, generator.WithRuntime(runtime))
			}
			return lsp.NewServer(version, a.cfg.Output, opts...).RunStdio()
		},
	}
}
