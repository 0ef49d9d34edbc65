package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
)

// receiptPollInterval is how often send --wait asks the bundler for a receipt.
var receiptPollInterval = 2 * time.Second

var (
	callSpecs   []string
	waitReceipt bool
	waitTimeout time.Duration

	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "send a user operation",
		Long: `Build, sign and submit a user operation. Repeat --call to batch several calls.
A call is target[:value[:data]]; value is in wei, or in ether with an "ether" suffix.
When the config has a paymaster block the operation is sponsored.
With --wait the command polls the bundler until the operation is included`,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := intentFor(callSpecs)
			if err != nil {
				return err
			}
			_, w, err := loadWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer w.Close()

			res, err := w.Provider.SendUserOperation(cmd.Context(), intent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user operation hash: %s\n", res.Hash)
			if !waitReceipt {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), waitTimeout)
			defer cancel()
			receipt, err := w.Bundler.WaitForUserOperationReceipt(ctx, res.Hash, receiptPollInterval)
			if err != nil {
				return err
			}
			return printJSON(cmd, receipt)
		},
	}

	estimateCreditCmd = &cobra.Command{
		Use:   "estimate-credit",
		Short: "ask the paymaster what a user operation would cost",
		Long:  `Build a user operation and ask the paymaster for a credit estimate. Nothing is signed or submitted`,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := intentFor(callSpecs)
			if err != nil {
				return err
			}
			_, w, err := loadWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer w.Close()

			req, err := estimate(cmd, w.Provider, intent)
			if err != nil {
				return err
			}
			return printRequest(cmd, req)
		},
	}
)

func estimate(cmd *cobra.Command, p *provider.Provider, intent provider.Intent) (*userop.Request, error) {
	if p.Stages().PaymasterEstimator == nil {
		return nil, fmt.Errorf("no paymaster configured in %s", configPath)
	}
	return p.EstimateCredit(cmd.Context(), intent)
}

func printRequest(cmd *cobra.Command, req *userop.Request) error {
	_, err := newPrinter(cmd).Println(req)
	return err
}

func newPrinter(cmd *cobra.Command) *pp.PrettyPrinter {
	printer := pp.New()
	printer.SetOutput(cmd.OutOrStdout())
	printer.SetColoringEnabled(false)
	return printer
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(estimateCreditCmd)

	for _, c := range []*cobra.Command{sendCmd, estimateCreditCmd} {
		c.Flags().StringArrayVar(&callSpecs, "call", nil, "call to execute as target[:value[:data]], repeatable")
	}
	sendCmd.Flags().BoolVar(&waitReceipt, "wait", false, "wait for the user operation receipt")
	sendCmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 2*time.Minute, "how long --wait polls before giving up")
}
