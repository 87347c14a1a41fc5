package client

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/MKhiriev/go-note-vault/internal/app"
	"github.com/MKhiriev/go-note-vault/internal/vault"
	"github.com/MKhiriev/go-note-vault/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04"

func (a *App) newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and edit notes",
	}
	cmd.AddCommand(
		a.newNotesListCmd(),
		a.newNotesAddCmd(),
		a.newNotesShowCmd(),
		a.newNotesDeleteCmd(),
	)
	return cmd
}

func (a *App) newNotesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			notes, err := v.LoadNotes(ctx, pin)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				a.warn("No notes yet")
				a.hint("Run %s to add one", color.YellowString("notevault notes add --title ..."))
				return nil
			}

			for _, n := range notes {
				fmt.Fprintf(a.out, "%s  %s  %s", color.CyanString("%d", n.ID), formatDate(n.Date), n.Title)
				if count := len(n.Images) + len(n.Files); count > 0 {
					fmt.Fprintf(a.out, "  (%d attachment(s))", count)
				}
				if n.Locked {
					fmt.Fprint(a.out, "  [locked]")
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
}

func (a *App) newNotesAddCmd() *cobra.Command {
	var (
		title   string
		content string
		images  []string
		files   []string
		locked  bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note, optionally with attached files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			notes, err := v.LoadNotes(ctx, pin)
			if err != nil {
				return err
			}

			note := models.NewNote(title, content, a.now())
			note.Locked = locked
			for slices.ContainsFunc(notes, func(n models.Note) bool { return n.ID == note.ID }) {
				note.ID++
			}

			for _, path := range images {
				id, err := a.storeFile(ctx, v, pin, path)
				if err != nil {
					return err
				}
				note.Images = append(note.Images, models.ImageRef{AttachmentID: id})
			}
			for _, path := range files {
				id, err := a.storeFile(ctx, v, pin, path)
				if err != nil {
					return err
				}
				note.Files = append(note.Files, models.FileRef{
					Name:         filepath.Base(path),
					Mime:         mimeType(path),
					AttachmentID: id,
				})
			}

			if _, err = v.SaveNotes(ctx, append(notes, note), pin); err != nil {
				return err
			}
			a.success("Note %d saved", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note text")
	cmd.Flags().StringSliceVar(&images, "image", nil, "image file to attach (repeatable)")
	cmd.Flags().StringSliceVar(&files, "file", nil, "file to attach (repeatable)")
	cmd.Flags().BoolVar(&locked, "locked", false, "mark the note as locked")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *App) newNotesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			notes, err := v.LoadNotes(ctx, pin)
			if err != nil {
				return err
			}
			i := slices.IndexFunc(notes, func(n models.Note) bool { return n.ID == id })
			if i < 0 {
				return fmt.Errorf("%w: %d", app.ErrNoteNotFound, id)
			}

			a.printNote(notes[i])
			return nil
		},
	}
}

func (a *App) newNotesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note and the attachments only it refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			v, pin, err := a.unlock(ctx)
			if err != nil {
				return err
			}

			notes, err := v.LoadNotes(ctx, pin)
			if err != nil {
				return err
			}
			i := slices.IndexFunc(notes, func(n models.Note) bool { return n.ID == id })
			if i < 0 {
				return fmt.Errorf("%w: %d", app.ErrNoteNotFound, id)
			}

			removed := notes[i]
			remaining := slices.Delete(slices.Clone(notes), i, i+1)
			if _, err = v.SaveNotes(ctx, remaining, pin); err != nil {
				return err
			}

			still := referencedIDs(remaining)
			for attID := range referencedIDs([]models.Note{removed}) {
				if _, ok := still[attID]; ok {
					continue
				}
				if err = v.DeleteAttachment(ctx, attID); err != nil {
					return err
				}
			}

			a.success("Note %d deleted", id)
			return nil
		},
	}
}

func (a *App) printNote(n models.Note) {
	bold := color.New(color.Bold)

	bold.Fprintln(a.out, n.Title)
	fmt.Fprintf(a.out, "%s  id %d", formatDate(n.Date), n.ID)
	if n.Locked {
		fmt.Fprint(a.out, "  [locked]")
	}
	fmt.Fprintln(a.out)

	if n.Content != "" {
		fmt.Fprintf(a.out, "\n%s\n", n.Content)
	}
	if n.Summary != "" {
		fmt.Fprintf(a.out, "\nSummary: %s\n", n.Summary)
	}
	if n.Event != nil {
		fmt.Fprintf(a.out, "\nEvent: %s - %s (%s)", formatDate(n.Event.Start), formatDate(n.Event.End), n.Event.TimeZone)
		if n.Event.Location != "" {
			fmt.Fprintf(a.out, " at %s", n.Event.Location)
		}
		fmt.Fprintln(a.out)
	}

	for _, img := range n.Images {
		fmt.Fprintf(a.out, "  image %s\n", refLabel(img.AttachmentID))
	}
	for _, f := range n.Files {
		fmt.Fprintf(a.out, "  file  %s  %s (%s)\n", refLabel(f.AttachmentID), f.Name, f.Mime)
	}
	for _, lp := range n.LinkPreviews {
		fmt.Fprintf(a.out, "  link  %s\n", lp.URL)
	}
}

// storeFile reads path and saves it as a new attachment.
func (a *App) storeFile(ctx context.Context, v *vault.Vault, pin, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return v.SaveAttachment(ctx, pin, data, "")
}

func referencedIDs(notes []models.Note) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, n := range notes {
		for _, img := range n.Images {
			if img.AttachmentID != "" {
				ids[img.AttachmentID] = struct{}{}
			}
		}
		for _, f := range n.Files {
			if f.AttachmentID != "" {
				ids[f.AttachmentID] = struct{}{}
			}
		}
	}
	return ids
}

func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", app.ErrNoteNotFound, s)
	}
	return id, nil
}

func formatDate(ms int64) string {
	return time.UnixMilli(ms).Format(dateLayout)
}

func mimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func refLabel(id string) string {
	if id == "" {
		return "(inline)"
	}
	return id
}
