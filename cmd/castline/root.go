package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/castline/internal/app"
	"github.com/ashureev/castline/internal/config"
	"github.com/ashureev/castline/internal/logging"
	"github.com/ashureev/castline/internal/render"
	"github.com/ashureev/castline/internal/view"
)

var errNotLoggedIn = errors.New("not logged in, run `castline login` first")

// cli carries what every command needs once PersistentPreRunE has run.
type cli struct {
	output  string
	verbose bool

	app     *app.App
	printer *render.Printer
	in      io.Reader
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{in: os.Stdin, out: os.Stdout}

	root := &cobra.Command{
		Use:           "castline",
		Short:         "Terminal client for the Castline talent network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&c.output, "output", "o", render.FormatTable, "output format: table or yaml")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		c.loginCmd(), c.logoutCmd(), c.whoamiCmd(), c.registerCmd(),
		c.feedCmd(), c.postCmd(), c.likeCmd(), c.commentCmd(),
		c.notificationsCmd(), c.leaderboardCmd(), c.searchCmd(),
		c.groupsCmd(), c.castingCallsCmd(), c.applyCmd(),
		c.conversationsCmd(), c.chatCmd(), c.messageCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	// Logs go to stderr so they never mix with command output.
	logger := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	c.printer, err = render.New(c.out, c.output)
	if err != nil {
		return err
	}
	c.app, err = app.New(cfg, logger)
	if err != nil {
		return err
	}
	return c.app.Start(ctx)
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// open navigates to route and returns the mounted screen. The caller closes it.
func (c *cli) open(ctx context.Context, route string) (app.Screen, error) {
	nav, err := c.app.Navigate(ctx, route)
	if err != nil {
		return nil, err
	}
	if nav.Decision.Outcome != view.Allow {
		return nil, errNotLoggedIn
	}
	if nav.Screen == nil {
		return nil, fmt.Errorf("%s has nothing to show", route)
	}
	return nav.Screen, nil
}

// screenErr turns a view's inline error into a command error.
func screenErr(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
