package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/lipiplay/internal/logging"
	"github.com/mgpai22/lipiplay/internal/markup"
	"github.com/mgpai22/lipiplay/internal/subtitle"
	"github.com/spf13/cobra"
)

var inspectAt int64

var inspectCmd = &cobra.Command{
	Use:   "inspect [subtitle file]",
	Short: "List the entries of a subtitle file",
	Long: `Parse a subtitle file and print its entries as a table.

With --at, print only the entry that is active at that subtitle time, or
the next one to start when the time falls in a gap.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().
		Int64Var(&inspectAt, "at", -1, "Subtitle time in milliseconds to look up")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	entries, format, err := subtitle.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open subtitles: %w", err)
	}
	logger.Debugw("Parsed subtitles",
		"file", path,
		"format", format,
		"entries", len(entries),
	)

	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("at") {
		tl := subtitle.NewTimeline(entries)
		idx, active, ok := tl.Search(inspectAt)
		if !ok {
			fmt.Fprintf(out, "No entry at or after %s\n", subtitle.FormatSRTTime(inspectAt))
			return nil
		}
		status := "next"
		if active {
			status = "active"
		}
		entries = []subtitle.Entry{tl.At(idx)}
		fmt.Fprintf(out, "%s entry at %s:\n", status, subtitle.FormatSRTTime(inspectAt))
	}

	fmt.Fprintln(out, renderEntries(entries, logging.IsTerminal(stdoutFile(cmd))))
	if !cmd.Flags().Changed("at") {
		tl := subtitle.NewTimeline(entries)
		first, last := tl.Span()
		fmt.Fprintf(out, "%d entries (%s), %s - %s\n",
			len(entries),
			format,
			subtitle.FormatSRTTime(first),
			subtitle.FormatSRTTime(last),
		)
	}
	return nil
}

func renderEntries(entries []subtitle.Entry, color bool) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Counter),
			subtitle.FormatSRTTime(e.Start.Ms),
			subtitle.FormatSRTTime(e.End.Ms),
			styleText(strings.Join(e.Lines, " / "), color),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func styleText(s string, color bool) string {
	if color {
		return markup.ANSI(s)
	}
	return markup.Plain(s)
}
