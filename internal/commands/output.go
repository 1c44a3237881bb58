package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/export"
)

const formatJSON = "json"

// outputFlags are shared by every command that prints a report.
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", string(export.FormatCSV), "output format: csv, json, or xlsx")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write to file instead of stdout")
}

// write renders report in the requested format to --out or stdout.
func (o *outputFlags) write(cmd *cobra.Command, report any) error {
	switch o.format {
	case formatJSON, string(export.FormatCSV):
	case string(export.FormatXLSX):
		if o.out == "" {
			return fmt.Errorf("--out is required for xlsx")
		}
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}

	w := cmd.OutOrStdout()
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", o.out, err)
		}
		defer f.Close()
		w = f
	}
	if err := encode(w, report, o.format); err != nil {
		return err
	}
	if o.out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", o.out)
	}
	return nil
}

func encode(w io.Writer, report any, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	t, err := export.Render(report)
	if err != nil {
		return err
	}
	return export.Write(w, t, export.Format(format))
}

// parseDate reads a YYYY-MM-DD flag value, returning def when empty.
func parseDate(flag, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s %q: want YYYY-MM-DD", flag, value)
	}
	return d, nil
}
