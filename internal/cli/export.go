package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/lipiplay/internal/subtitle"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
	exportDelay  int64
)

var exportCmd = &cobra.Command{
	Use:   "export [subtitle file]",
	Short: "Write subtitles with the stored delay baked in",
	Long: `Export a subtitle file with its stored delay applied to every entry,
so other players show it in sync without any adjustment.

The output format follows --format, or the output file's extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringVarP(&exportOutput, "output", "o", "", "Output file (default: <name>.synced.<ext>)")
	exportCmd.Flags().
		StringVarP(&exportFormat, "format", "f", "", "Output format: srt or ass")
	exportCmd.Flags().
		Int64Var(&exportDelay, "delay", 0, "Delay in milliseconds (default: the stored delay)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := args[0]

	entries, inFormat, err := subtitle.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open subtitles: %w", err)
	}

	delay := exportDelay
	if !cmd.Flags().Changed("delay") {
		store, kv, err := openPrefs()
		if err != nil {
			return err
		}
		defer kv.Close()

		delay, err = store.Delay(ctx, input)
		if err != nil {
			return err
		}
	}

	format, err := resolveExportFormat(exportFormat, exportOutput, inFormat)
	if err != nil {
		return err
	}
	output := exportOutput
	if output == "" {
		output = defaultExportPath(input, format)
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(subtitle.Shift(entries, delay), output); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	logger.Infow("Exported subtitles",
		"input", input,
		"output", output,
		"format", format,
		"delay_ms", delay,
		"entries", len(entries),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s (delay %+d ms)\n", len(entries), output, delay)
	return nil
}

// explicit flag, then the output extension, then the input's own format
func resolveExportFormat(flag, output string, input subtitle.Format) (subtitle.Format, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "":
	case "srt":
		return subtitle.FormatSRT, nil
	case "ass", "ssa":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use srt or ass)", flag)
	}
	if output != "" && filepath.Ext(output) != "" {
		return subtitle.GetFormatFromExtension(output), nil
	}
	if input == "" {
		return subtitle.FormatSRT, nil
	}
	return input, nil
}

func defaultExportPath(input string, format subtitle.Format) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + ".synced" + subtitle.GetExtensionForFormat(format)
}
