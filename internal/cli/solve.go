package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

// solveCmd creates a task and waits for it.
var solveCmd = &cobra.Command{
	Use:   "solve <type> [key=value...]",
	Short: "Create a task and wait for its solution",
	Long: `Solve creates a task like "create" and then polls the service until the task
is solved or failed, or --solve-timeout elapses.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskType, params, err := taskFromArgs(args)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		id, err := client.CreateTaskParams(ctx, taskType, params)
		if err != nil {
			return err
		}

		spinner, spinErr := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(fmt.Sprintf("Solving %s (task %s)", taskType, id))
		if spinErr != nil {
			slog.Debug("spinner unavailable", slog.Any("error", spinErr))
		}
		started := time.Now()

		res, err := client.WaitTaskResult(ctx, id)
		if spinner != nil {
			_ = spinner.Stop()
		}
		if err != nil {
			if res != nil && res.Status == salamoonder.StatusFailed {
				return printResult(cmd.OutOrStdout(), res)
			}
			return err
		}

		pterm.Info.Printfln("solved in %s", time.Since(started).Round(time.Millisecond))
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	solveCmd.Flags().DurationVar(&flags.pollInterval, "poll-interval", time.Second, "delay between result checks")
	solveCmd.Flags().DurationVar(&flags.solveTimeout, "solve-timeout", 2*time.Minute, "give up after this long")
	rootCmd.AddCommand(solveCmd)
}
