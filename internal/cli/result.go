package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

// resultCmd fetches a task's state once.
var resultCmd = &cobra.Command{
	Use:   "result <task-id>",
	Short: "Fetch the current state of a task",
	Long: `Result asks the service once for the state of a task. A solved task prints
its solution; a pending task prints "pending". A failed task exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.GetTaskResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(resultCmd)
}

// printResult writes the machine-readable outcome to out and decorations via pterm.
func printResult(out io.Writer, res *salamoonder.TaskResult) error {
	switch res.Status {
	case salamoonder.StatusPending:
		pterm.Info.Printfln("task %s is still %s", res.TaskID, res.RawStatus)
		fmt.Fprintln(out, "pending")
		return nil
	case salamoonder.StatusReady:
		pterm.Success.Printfln("task %s solved", res.TaskID)
		fmt.Fprintln(out, solutionText(res))
		return nil
	}
	pterm.Error.Printfln("task %s failed: %s", res.TaskID, res.Message)
	return res.Err()
}

// solutionText prints token solutions bare and object solutions as indented JSON.
func solutionText(res *salamoonder.TaskResult) string {
	if tok, err := res.Token(); err == nil {
		return tok
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Solution, "", "  "); err != nil {
		return string(res.Solution)
	}
	return buf.String()
}
