package client

import (
	"fmt"

	"github.com/MKhiriev/go-note-vault/internal/app"
	"github.com/MKhiriev/go-note-vault/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *App) newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the vault PIN",
	}
	cmd.AddCommand(
		a.newPinStatusCmd(),
		a.newPinSetCmd(),
		a.newPinCheckCmd(),
		a.newPinChangeCmd(),
		a.newPinClearCmd(),
		a.newPinBiometricCmd(),
	)
	return cmd
}

func (a *App) newPinStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a PIN is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := a.openVault(ctx)
			if err != nil {
				return err
			}

			set, err := v.IsPINSet(ctx)
			if err != nil {
				return err
			}
			if !set {
				a.warn("No PIN is set")
				a.hint("Run %s to protect the vault", color.YellowString("notevault pin set"))
				return nil
			}

			length, err := v.PinLength(ctx)
			if err != nil {
				return err
			}
			biometric, err := v.BiometricEnabled(ctx)
			if err != nil {
				return err
			}

			a.success("PIN is set (%d digits)", length)
			fmt.Fprintf(a.out, "  biometric unlock: %s\n", onOff(biometric))
			return nil
		},
	}
}

func (a *App) newPinSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Set the first PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := a.openVault(ctx)
			if err != nil {
				return err
			}

			set, err := v.IsPINSet(ctx)
			if err != nil {
				return err
			}
			if set {
				return service.ErrPINAlreadySet
			}

			pin, err := a.readNewPIN(a.pin, "New PIN: ")
			if err != nil {
				return err
			}

			if err = v.SetPIN(ctx, pin); err != nil {
				return err
			}
			a.success("PIN set")
			return nil
		},
	}
}

func (a *App) newPinCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify a PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.unlock(cmd.Context()); err != nil {
				return err
			}
			a.success("PIN is correct")
			return nil
		},
	}
}

func (a *App) newPinChangeCmd() *cobra.Command {
	var newPin string

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Change the PIN and re-encrypt every note and attachment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, oldPin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			pin, err := a.readNewPIN(newPin, "New PIN: ")
			if err != nil {
				return err
			}

			report, err := v.UpdatePIN(ctx, oldPin, pin)
			if err != nil {
				return err
			}

			a.success("PIN changed, %d attachment(s) re-encrypted", len(report.Succeeded))
			if report.HasFailures() {
				a.warn("%d attachment(s) could not be re-encrypted and remain under the old PIN:", len(report.Failed))
				for _, id := range report.Failed {
					fmt.Fprintf(a.out, "  %s\n", id)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&newPin, "new-pin", "", "new PIN (prompted for when omitted)")
	return cmd
}

func (a *App) newPinClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the PIN; encrypted data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, _, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			if err = v.ClearPIN(ctx); err != nil {
				return err
			}
			a.success("PIN removed")
			a.warn("Notes and attachments stay encrypted under the removed PIN")
			return nil
		},
	}
}

func (a *App) newPinBiometricCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "biometric on|off",
		Short:     "Store the biometric unlock preference",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, _, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			enabled := args[0] == "on"
			if err = v.SetBiometricEnabled(ctx, enabled); err != nil {
				return err
			}
			a.success("Biometric unlock %s", onOff(enabled))
			return nil
		},
	}
}

// readNewPIN returns flagValue when set, otherwise prompts twice and
// requires both entries to match.
func (a *App) readNewPIN(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	pin, err := a.pins.ReadPIN(prompt)
	if err != nil {
		return "", err
	}
	again, err := a.pins.ReadPIN("Repeat PIN: ")
	if err != nil {
		return "", err
	}
	if pin != again {
		return "", app.ErrPINMismatch
	}
	return pin, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
