package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	configPath = "./config/aa-provider.yaml"
	rootCmd    = &cobra.Command{
		Use:   "aa-provider",
		Short: "ERC-4337 user operation CLI",
		Long: `Build, sponsor, sign and submit ERC-4337 user operations from a SimpleAccount.

Such as "aa-provider address" or "aa-provider send --call 0xabc...:0.01ether" and so on
`,
		SilenceUsage: true,
	}
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/aa-provider.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs, e.g. :9090")
}
