package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// loginCmd stores the API key in the OS keychain.
var loginCmd = &cobra.Command{
	Use:   "login [api-key]",
	Short: "Store the API key in the OS keychain",
	Long: `Login saves the API key so later commands can run without --api-key.
The key is taken from the argument, --api-key, or read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(flags.apiKey)
		if len(args) == 1 {
			key = strings.TrimSpace(args[0])
		}
		if key == "" {
			pterm.Print("API key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no API key given")
			}
			key = strings.TrimSpace(line)
		}
		if key == "" {
			return errors.New("no API key given")
		}

		store, err := openKeychain()
		if err != nil {
			return err
		}
		if err := store.Save(key); err != nil {
			return err
		}
		pterm.Success.Println("API key saved to the OS keychain")
		return nil
	},
}

// logoutCmd removes the stored API key.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the API key from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openKeychain()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		pterm.Success.Println("API key removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
