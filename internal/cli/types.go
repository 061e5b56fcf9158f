package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

// typesCmd prints the per-type parameter table.
var typesCmd = &cobra.Command{
	Use:   "types [type]",
	Short: "List task types and their parameters",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types := salamoonder.TaskTypes
		if len(args) == 1 {
			t, err := parseTaskType(args[0])
			if err != nil {
				return err
			}
			types = []salamoonder.TaskType{t}
		}

		data := pterm.TableData{{"Type", "Parameter", "Kind", "Required", "Sent as"}}
		for _, t := range types {
			specs, _ := salamoonder.ParamSpecs(t)
			for i, s := range specs {
				name := ""
				if i == 0 {
					name = string(t)
				}
				required := "no"
				if s.Required {
					required = "yes"
				}
				wire := s.Wire
				if wire == "" {
					wire = s.Name
				}
				data = append(data, []string{name, s.Name, s.Kind.String(), required, wire})
			}
		}

		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
