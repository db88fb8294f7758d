// Package cli is the terminal front end. Every command restores the stored
// session first and then acts as whoever it belongs to.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/config"
	"github.com/dukerupert/kidscoin/internal/logging"
)

type cli struct {
	app   *App
	out   io.Writer
	style styles
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{out: stdout, style: newStyles(stdout)}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if c.app != nil && apperr.IsKind(err, apperr.KindAuthentication) && cmd != nil && !signInCommands[cmd.Name()] {
		c.app.Session.Expire()
	}
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil {
			c.app.Logger.Warn("close local state", "error", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, c.style.Error.Render("Erro: "+errorMessage(err)))
		return 1
	}
	return 0
}

// signInCommands fail with an authentication error on bad credentials; that
// leaves any existing session alone.
var signInCommands = map[string]bool{
	"login":       true,
	"child-login": true,
	"register":    true,
}

// errorMessage prefers the normalized message of a classified error and
// falls back to the raw text for usage and setup errors.
func errorMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.Message(err)
	}
	return err.Error()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kidscoin",
		Short:         "Family chores, rewards and savings from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel)
			app, err := Open(cfg, logger)
			if err != nil {
				return err
			}
			c.app = app
			app.Session.Restore(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		c.loginCmd(),
		c.childLoginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.tasksCmd(),
		c.rewardsCmd(),
		c.redemptionsCmd(),
		c.savingsCmd(),
		c.walletCmd(),
		c.childrenCmd(),
		c.watchCmd(),
	)
	return root
}

// actorCtx is the command context carrying the signed-in actor.
func (c *cli) actorCtx(cmd *cobra.Command) context.Context {
	return c.app.Session.Context(cmd.Context())
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
