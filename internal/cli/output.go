package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// stdoutFile is the command's output when it is a real file, so callers
// can ask whether it is a terminal.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}
