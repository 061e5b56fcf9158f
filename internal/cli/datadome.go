package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-salamoonder/datadome"
)

var (
	ddCookie  string
	ddReferer string
)

var datadomeCmd = &cobra.Command{
	Use:   "datadome",
	Short: "Build DataDome challenge URLs from a blocked page",
	Long: `The datadome commands read the HTML of a page DataDome blocked (a file, or "-"
for stdin) and print the captcha_url to pass to the DataDome solvers.`,
}

var datadomeSliderCmd = &cobra.Command{
	Use:   "slider <html-file>",
	Short: "Print the slider captcha URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		u, err := datadome.ParseSliderURL(html, ddCookie, ddReferer)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

var datadomeInterstitialCmd = &cobra.Command{
	Use:   "interstitial <html-file>",
	Short: "Print the interstitial challenge URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		u, err := datadome.ParseInterstitialURL(html, ddCookie, ddReferer)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	datadomeCmd.PersistentFlags().StringVar(&ddCookie, "cookie", "", "current datadome cookie value")
	datadomeCmd.PersistentFlags().StringVar(&ddReferer, "referer", "", "URL of the blocked page")
	_ = datadomeCmd.MarkPersistentFlagRequired("cookie")
	_ = datadomeCmd.MarkPersistentFlagRequired("referer")

	datadomeCmd.AddCommand(datadomeSliderCmd, datadomeInterstitialCmd)
	rootCmd.AddCommand(datadomeCmd)
}
