package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/implgen/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <classes> <class>...",
		Short: "Regenerate stubs whenever class files change",
		Long: `Generate stubs for the named classes, then watch the class
directory and regenerate them after each batch of changes. Failures are
reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, err := time.ParseDuration(a.cfg.Debounce)
			if err != nil {
				return errors.Wrapf(err, "debounce %q", a.cfg.Debounce)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gen, release, err := a.newGenerator(ctx)
			if err != nil {
				return err
			}
			defer release()

			w, err := watch.New(gen, args[0], args[1:], watch.WithDebounce(debounce))
			if err != nil {
				return err
			}
			defer w.Close()

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			return w.Run(ctx, func(r watch.Result) {
				if r.Err != nil {
					printError(errOut, r.Err)
					return
				}
				fmt.Fprintln(out, r.FQN)
			})
		},
	}
}
