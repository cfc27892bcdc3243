package cli

import (
	"fmt"
	"strconv"

	"github.com/mgpai22/lipiplay/internal/prefs"
	"github.com/mgpai22/lipiplay/internal/subtitle"
	"github.com/spf13/cobra"
)

var delayCmd = &cobra.Command{
	Use:   "delay",
	Short: "Show or change stored subtitle delays",
	Long: `Manage the per-file subtitle delay.

A positive delay shows subtitles later: video time = subtitle time + delay.
Files are keyed by base name.`,
}

var delayGetCmd = &cobra.Command{
	Use:   "get [subtitle file]",
	Short: "Print the stored delay",
	Args:  cobra.ExactArgs(1),
	RunE: withPrefs(func(cmd *cobra.Command, store *prefs.Store, args []string) error {
		delay, err := store.Delay(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", delay)
		return nil
	}),
}

var delaySetCmd = &cobra.Command{
	Use:   "set [subtitle file] [ms]",
	Short: "Store a delay in milliseconds",
	Args:  cobra.ExactArgs(2),
	RunE: withPrefs(func(cmd *cobra.Command, store *prefs.Store, args []string) error {
		ms, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", args[1], err)
		}
		if err := store.SetDelay(cmd.Context(), args[0], ms); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delay for %s set to %+d ms\n", prefs.Key(args[0]), ms)
		return nil
	}),
}

var (
	pinEnd bool
)

var delayPinCmd = &cobra.Command{
	Use:   "pin [subtitle file] [counter] [video ms]",
	Short: "Line an entry up with a video time",
	Long: `Compute and store the delay that makes the start (or, with --end, the
end) of the given entry land on the given video time.`,
	Args: cobra.ExactArgs(3),
	RunE: withPrefs(func(cmd *cobra.Command, store *prefs.Store, args []string) error {
		counter, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid counter %q: %w", args[1], err)
		}
		videoMs, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid video time %q: %w", args[2], err)
		}

		entries, _, err := subtitle.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open subtitles: %w", err)
		}
		entry, ok := subtitle.NewTimeline(entries).ByCounter(counter)
		if !ok {
			return fmt.Errorf("no entry with counter %d", counter)
		}

		boundary := entry.Start.Ms
		if pinEnd {
			boundary = entry.End.Ms
		}
		delay, err := store.PinDelay(cmd.Context(), args[0], boundary, videoMs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delay for %s set to %+d ms\n", prefs.Key(args[0]), delay)
		return nil
	}),
}

var delayResetCmd = &cobra.Command{
	Use:   "reset [subtitle file]",
	Short: "Forget the stored delay and restore point",
	Args:  cobra.ExactArgs(1),
	RunE: withPrefs(func(cmd *cobra.Command, store *prefs.Store, args []string) error {
		if err := store.Forget(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", prefs.Key(args[0]))
		return nil
	}),
}

var delayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every file with stored preferences",
	Args:  cobra.NoArgs,
	RunE: withPrefs(func(cmd *cobra.Command, store *prefs.Store, args []string) error {
		items, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No stored preferences")
			return nil
		}
		fmt.Fprintln(out, renderPrefs(items))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(delayCmd)
	delayCmd.AddCommand(delayGetCmd, delaySetCmd, delayPinCmd, delayResetCmd, delayListCmd)

	delayPinCmd.Flags().
		BoolVar(&pinEnd, "end", false, "Pin the entry's end instead of its start")
}

func withPrefs(fn func(cmd *cobra.Command, store *prefs.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, kv, err := openPrefs()
		if err != nil {
			return err
		}
		defer kv.Close()
		return fn(cmd, store, args)
	}
}

func renderPrefs(items []prefs.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		last := "-"
		if item.LastCounter > 0 {
			last = strconv.Itoa(item.LastCounter)
		}
		updated := "-"
		if !item.UpdatedAt.IsZero() {
			updated = item.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			item.File,
			fmt.Sprintf("%+d", item.DelayMs),
			last,
			updated,
		})
	}
	return renderTable(
		[]string{"File", "Delay (ms)", "Last entry", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	)
}
