package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/implgen/format"
	"github.com/dhamidi/implgen/java"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		planFormat string
		fromDir    string
	)

	cmd := &cobra.Command{
		Use:   "plan <class>",
		Short: "Print what a stub would contain without writing it",
		Long: `Resolve the methods and constructor of a stub and print them.

Without --dir the class is loaded from the standard library.

Formats:
  line   one tab separated record per stub, constructor and method
  json   the same as an indented JSON document
  java   the source file that would be written`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enc func() format.Encoder
			out := cmd.OutOrStdout()
			switch planFormat {
			case "line":
				enc = func() format.Encoder { return format.NewLineEncoder(out) }
			case "json":
				enc = func() format.Encoder { return format.NewJSONEncoder(out) }
			case "java":
				enc = func() format.Encoder { return format.NewJavaEncoder(out) }
			default:
				return errors.Newf("unknown format: %s (expected line, json or java)", planFormat)
			}

			gen, release, err := a.newGenerator(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			var class *java.Class
			if fromDir != "" {
				c, loader, err := gen.LoadFromDirectory(fromDir, args[0])
				if err != nil {
					return err
				}
				defer loader.Close()
				class = c
			} else {
				class, err = gen.LoadFromStandardLibrary(args[0])
				if err != nil {
					return err
				}
			}

			stub, err := gen.Plan(class, fromDir == "")
			if err != nil {
				return err
			}
			return enc().Encode(stub)
		},
	}

	cmd.Flags().StringVarP(&planFormat, "format", "f", "line", "output format (line, json, java)")
	cmd.Flags().StringVarP(&fromDir, "dir", "d", "", "load the class from this directory or jar")

	return cmd
}
