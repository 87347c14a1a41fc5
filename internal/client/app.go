// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MKhiriev/go-note-vault/internal/app"
	"github.com/MKhiriev/go-note-vault/internal/config"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/service"
	"github.com/MKhiriev/go-note-vault/internal/vault"
	"github.com/MKhiriev/go-note-vault/models"
	"github.com/spf13/cobra"
)

// App is the notevault command line. It is meant to run once.
type App struct {
	root      *cobra.Command
	flags     *config.Flags
	buildInfo models.AppBuildInfo

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	pins   PINReader
	now    func() time.Time

	// pin is the value of the persistent --pin flag.
	pin string
	// started is set once a command passed argument validation.
	started bool

	log   *logger.Logger
	vault *vault.Vault
}

// Option configures an [App].
type Option func(*App)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

// WithLogger replaces the file logger built from the configuration.
func WithLogger(log *logger.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithClock replaces time.Now for note creation.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// NewApp builds the command tree.
func NewApp(buildInfo models.AppBuildInfo, opts ...Option) *App {
	a := &App{
		flags:     config.NewFlags("notevault"),
		buildInfo: buildInfo,
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.pins = newLinePINReader(a.in, a.out)
	a.root = a.newRootCmd()
	return a
}

// Run implements [Client]. The vault, when opened by a command, is closed
// before Run returns.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.closeVault()

	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	if err != nil && !a.started {
		return fmt.Errorf("%w: %w", app.ErrUsage, err)
	}
	return err
}

func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notevault",
		Short:         "PIN-protected encrypted notes",
		Long:          "notevault keeps notes and their attachments encrypted at rest under a numeric PIN.",
		Version:       a.buildInfo.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.started = true
		},
	}
	root.SetVersionTemplate(a.buildInfo.String() + "\n")
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().AddGoFlagSet(a.flags.FlagSet())
	root.PersistentFlags().StringVar(&a.pin, "pin", "", "PIN (prompted for when omitted)")

	root.AddCommand(
		a.newPinCmd(),
		a.newNotesCmd(),
		a.newAttachCmd(),
		a.newPruneCmd(),
		a.newVersionCmd(),
	)
	return root
}

// openVault loads the configuration and opens the vault on first use.
func (a *App) openVault(ctx context.Context) (*vault.Vault, error) {
	if a.vault != nil {
		return a.vault, nil
	}

	cfg, err := config.GetStructuredConfig(a.flags)
	if err != nil {
		return nil, err
	}

	if a.log == nil {
		a.log = logger.NewFileLogger("notevault", cfg.Log.File, cfg.Log.Level)
	}

	v, err := vault.New(ctx, cfg, a.log)
	if err != nil {
		a.log.Err(err).Msg("failed to open vault")
		return nil, err
	}

	a.vault = v
	return v, nil
}

func (a *App) closeVault() {
	if a.vault == nil {
		return
	}
	if err := a.vault.Close(); err != nil {
		a.log.Err(err).Msg("failed to close vault")
	}
	a.vault = nil
}

// readPIN returns the --pin value or prompts for one.
func (a *App) readPIN(prompt string) (string, error) {
	if a.pin != "" {
		return a.pin, nil
	}
	return a.pins.ReadPIN(prompt)
}

// unlock opens the vault and verifies the user's PIN.
func (a *App) unlock(ctx context.Context) (*vault.Vault, string, error) {
	v, err := a.openVault(ctx)
	if err != nil {
		return nil, "", err
	}

	set, err := v.IsPINSet(ctx)
	if err != nil {
		return nil, "", err
	}
	if !set {
		return nil, "", service.ErrPINNotSet
	}

	pin, err := a.readPIN("PIN: ")
	if err != nil {
		return nil, "", err
	}

	ok, err := v.CheckPIN(ctx, pin)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		a.log.Warn().Msg("wrong PIN entered")
		return nil, "", service.ErrWrongPIN
	}
	return v, pin, nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.out, a.buildInfo.String())
		},
	}
}

func (a *App) newPruneCmd() *cobra.Command {
	var opts vault.PruneOptions

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete attachments no note refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			removed, err := v.PruneAttachments(ctx, pin, opts)
			if err != nil {
				return err
			}

			if len(removed) == 0 {
				a.success("No orphan attachments")
				return nil
			}
			for _, id := range removed {
				fmt.Fprintf(a.out, "  %s\n", id)
			}
			a.success("Removed %d orphan attachment(s)", len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.AllowMissingNotes, "allow-missing-notes", false, "Prune even when no note collection exists")
	return cmd
}
