package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/implgen/config"
	"github.com/dhamidi/implgen/generator"
)

const version = "0.1.0"

// app carries state shared by all subcommands.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	configPath string
	verbose    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "implgen",
		Short:         "Generate compilable Java stubs for interfaces and abstract classes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default: nearest "+config.FileName+")")
	flags.StringP("output", "o", ".", "directory generated sources are written below")
	flags.String("java-home", "", "Java installation providing the standard library")
	flags.String("classpath", "", "extra directories and jars, separated like PATH")
	flags.String("builtin-prefix", generator.DefaultBuiltinPrefix, "packages whose stubs go to the default package")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity")

	for key, flag := range map[string]string{
		"output":         "output",
		"java_home":      "java-home",
		"classpath":      "classpath",
		"builtin_prefix": "builtin-prefix",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(newDirCmd(a))
	rootCmd.AddCommand(newStdCmd(a))
	rootCmd.AddCommand(newPlanCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	a.cfg = cfg

	// Logs go to stderr; stdout carries results and the LSP stream.
	commonlog.Configure(cfg.Verbose, nil)
	if cfg.File != "" {
		commonlog.GetLogger("implgen").Debugf("using configuration %s", cfg.File)
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "implgen: %s\n", err)
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(w, "hint: %s\n", hints)
	}
}

// exitCode distinguishes failure kinds for scripts.
func exitCode(err error) int {
	switch generator.KindOf(err) {
	case generator.KindTypeNotFound:
		return 2
	case generator.KindPathInvalid:
		return 3
	case generator.KindCannotExtend:
		return 4
	case generator.KindWriteFailed:
		return 5
	}
	return 1
}
