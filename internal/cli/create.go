package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createCmd submits one task and prints its id.
var createCmd = &cobra.Command{
	Use:   "create <type> [key=value...]",
	Short: "Create a task and print its id",
	Long: `Create submits a task of the given type with key=value parameters and prints
the task id returned by the service. Values are typed according to the
parameter table ("salamoonder types"); a value of the form @path is read from
a file, which is handy for Akamai scripts.

Example:
  salamoonder create KasadaCaptchaSolver pjs_url=https://example.com/.../p.js cd_only=false`,
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
		id, err := client.CreateTaskParams(cmd.Context(), taskType, params)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
