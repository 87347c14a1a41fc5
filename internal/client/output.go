package client

import (
	"fmt"
	"io"

	"github.com/MKhiriev/go-note-vault/internal/app"
	"github.com/fatih/color"
)

func (a *App) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

func (a *App) hint(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", color.CyanString("→"), fmt.Sprintf(format, args...))
}

// PrintError writes the user-facing message for err to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), app.Message(err))
}
