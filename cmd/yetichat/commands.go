package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-yetichat"
	"github.com/goliatone/go-yetichat/config"
	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeValidation = 2
	ExitCodeConfig     = 3
)

type rootOptions struct {
	out        io.Writer
	logOutput  io.Writer
	loadConfig func(envFiles []string) (*config.Config, error)
}

func defaultRootOptions() rootOptions {
	return rootOptions{
		out:       os.Stdout,
		logOutput: os.Stderr,
		loadConfig: func(envFiles []string) (*config.Config, error) {
			return config.Load(config.WithEnvFiles(envFiles...))
		},
	}
}

func newRootCmd(opts rootOptions) *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:   "yetichat",
		Short: "Log users in and out of CometChat",
		Long: `yetichat provisions CometChat users and manages the local chat session.
Credentials are read from YETICHAT_* environment variables or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.out)
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")

	withApp := func(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(envFiles)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, opts.logOutput)
			if err != nil {
				return err
			}
			defer a.Close()

			return run(cmd.Context(), a, args)
		}
	}

	root.AddCommand(
		newLoginCmd(withApp),
		newRegisterCmd(withApp),
		newLogoutCmd(withApp),
		newWhoamiCmd(withApp),
		newSeedCmd(withApp),
		newValidateCmd(),
	)

	return root
}

type appRunner func(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error

func newLoginCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <uid>",
		Short: "Log in as uid, creating the user when missing",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.start(ctx); err != nil {
			return err
		}
		user, err := a.orchestrator.Login(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.DisplayName(), user.UID)
		return nil
	})
	return cmd
}

func newRegisterCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <uid> <name>",
		Short: "Create a new user and log in",
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.start(ctx); err != nil {
			return err
		}
		user, err := a.orchestrator.Register(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s (%s)\n", user.DisplayName(), user.UID)
		return nil
	})
	return cmd
}

func newLogoutCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.start(ctx); err != nil {
			return err
		}
		if err := a.orchestrator.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	})
	return cmd
}

func newWhoamiCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.start(ctx); err != nil {
			return err
		}
		state := a.orchestrator.State()
		if !state.IsAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", state.User.DisplayName(), state.User.UID)
		return nil
	})
	return cmd
}

func newSeedCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo users",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.cfg.ValidateProvisioning(); err != nil {
			return err
		}
		outcomes, err := a.provisioner.CreateTestUsers(ctx)
		for _, outcome := range outcomes {
			switch {
			case outcome.Err != nil:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tfailed\t%s\n", outcome.UID, yetichat.ErrorMessage(outcome.Err))
			case outcome.Result.Created:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tcreated\n", outcome.UID)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\texists\n", outcome.UID)
			}
		}
		return err
	})
	return cmd
}

func newValidateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "validate <uid>",
		Short: "Check a uid (and optionally a name) without contacting the platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := yetichat.ValidateUID(args[0]); err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				if err := yetichat.ValidateName(name); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name to validate")
	return cmd
}

// exitCode maps an error to a process exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case yetichat.IsValidationError(err):
		return ExitCodeValidation
	case yetichat.IsConfigError(err):
		return ExitCodeConfig
	default:
		return ExitCodeError
	}
}
