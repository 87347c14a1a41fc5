package client

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func (a *App) newAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Store and read encrypted attachments",
	}
	cmd.AddCommand(
		a.newAttachPutCmd(),
		a.newAttachGetCmd(),
		a.newAttachRmCmd(),
	)
	return cmd
}

func (a *App) newAttachPutCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "put <file|->",
		Short: "Encrypt a file into the attachment store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(a.in)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			stored, err := v.SaveAttachment(ctx, pin, data, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, stored)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "attachment id (generated when omitted)")
	return cmd
}

func (a *App) newAttachGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Decrypt an attachment to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			data, err := v.OpenAttachment(ctx, pin, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				_, err = a.out.Write(data)
				return err
			}
			if err = os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.success("Attachment %s written to %s", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when omitted)")
	return cmd
}

func (a *App) newAttachRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, _, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			if err = v.DeleteAttachment(ctx, args[0]); err != nil {
				return err
			}
			a.success("Attachment %s deleted", args[0])
			return nil
		},
	}
}
