package cli

import (
	"fmt"
	"sort"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-salamoonder/akamai"
)

var (
	userAgent string
	rounds    int
	noJitter  bool
)

// Replaced in tests.
var newBrowser = func(opts akamai.Options) (akamai.Browser, error) {
	bc, err := akamai.NewBrowser(opts)
	if err != nil {
		return nil, err
	}
	return bc, nil
}

var akamaiCmd = &cobra.Command{
	Use:   "akamai",
	Short: "Run Akamai Bot Manager flows end to end",
	Long: `The akamai commands load a protected page through a TLS-impersonating
browser, solve the challenge with the service, and post the solution back.
Page traffic uses --proxy as well.`,
}

var akamaiWebCmd = &cobra.Command{
	Use:   "web <url>",
	Short: "Solve Akamai sensor_data and print the validated cookies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		profile, b, err := browserForFlags()
		if err != nil {
			return err
		}

		web := akamai.NewWeb(b)
		web.Jitter = !noJitter
		res, err := web.Solve(cmd.Context(), client, args[0], uaFor(profile), rounds)
		if err != nil {
			return err
		}
		pterm.Success.Println("sensor accepted")
		fmt.Fprintf(cmd.OutOrStdout(), "_abck=%s\nbm_sz=%s\n", res.Abck, res.Bmsz)
		return nil
	},
}

var akamaiSBSDCmd = &cobra.Command{
	Use:   "sbsd <url>",
	Short: "Solve Akamai SBSD and print the resulting cookies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		profile, b, err := browserForFlags()
		if err != nil {
			return err
		}

		sbsd := akamai.NewSBSD(b)
		sbsd.Jitter = !noJitter
		cookies, err := sbsd.Solve(cmd.Context(), client, args[0], uaFor(profile))
		if err != nil {
			return err
		}
		pterm.Success.Println("sbsd accepted")

		names := make([]string, 0, len(cookies))
		for name := range cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, cookies[name])
		}
		return nil
	},
}

// browserForFlags picks the TLS profile matching --user-agent when possible.
func browserForFlags() (stealth.BrowserProfile, akamai.Browser, error) {
	var profile stealth.BrowserProfile
	if len(stealth.BuiltinProfiles) > 0 {
		profile = stealth.BuiltinProfiles[0]
	}
	for _, p := range stealth.BuiltinProfiles {
		if userAgent != "" && p.UserAgent == userAgent {
			profile = p
			break
		}
	}
	b, err := newBrowser(akamai.Options{Proxy: flags.proxy, Profile: profile})
	return profile, b, err
}

func uaFor(profile stealth.BrowserProfile) string {
	if userAgent != "" {
		return userAgent
	}
	return profile.UserAgent
}

func init() {
	akamaiCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "browser User-Agent (default: the TLS profile's)")
	akamaiCmd.PersistentFlags().BoolVar(&noJitter, "no-jitter", false, "skip human-like pauses between requests")
	akamaiWebCmd.Flags().IntVar(&rounds, "rounds", akamai.DefaultRounds, "number of sensor posts")
	akamaiCmd.PersistentFlags().DurationVar(&flags.pollInterval, "poll-interval", time.Second, "delay between result checks")
	akamaiCmd.PersistentFlags().DurationVar(&flags.solveTimeout, "solve-timeout", 2*time.Minute, "give up on a task after this long")

	akamaiCmd.AddCommand(akamaiWebCmd, akamaiSBSDCmd)
	rootCmd.AddCommand(akamaiCmd)
}
