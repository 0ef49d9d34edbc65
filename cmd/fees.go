package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
)

var (
	feeStrategy string
	feeValue    int64
	feeBuffer   int64

	feesCmd = &cobra.Command{
		Use:   "fees",
		Short: "suggest EIP-1559 fees",
		Long: `Read the latest base fee and priority fee from the bundler and apply the chain's fee policy.
Use --strategy and --value to try another policy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, w, err := loadWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer w.Close()

			mode := w.Provider.FeeMode()
			if feeStrategy != "" {
				strategy, err := eip1559.ParseStrategy(feeStrategy)
				if err != nil {
					return err
				}
				mode = eip1559.GasFeeMode{Strategy: strategy, Value: big.NewInt(feeValue)}
			}

			buffer := w.Provider.FeeBuffer()
			if cmd.Flags().Changed("buffer") {
				buffer = big.NewInt(feeBuffer)
			}

			fees, err := eip1559.SuggestFees(cmd.Context(), w.Bundler, mode, buffer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chain:                    %s (%d)\n", w.Provider.Chain().Name, w.Provider.Chain().ID)
			fmt.Fprintf(out, "policy:                   %s\n", mode)
			fmt.Fprintf(out, "priority fee buffer:      %s%%\n", buffer)
			fmt.Fprintf(out, "maxFeePerGas:             %s\n", formatGwei(fees.MaxFeePerGas))
			fmt.Fprintf(out, "maxPriorityFeePerGas:     %s\n", formatGwei(fees.MaxPriorityFeePerGas))
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(feesCmd)

	feesCmd.Flags().StringVar(&feeStrategy, "strategy", "", "fee strategy: FIXED, BASE_FEE_PERCENTAGE, PRIORITY_FEE_PERCENTAGE or DEFAULT")
	feesCmd.Flags().Int64Var(&feeValue, "value", 0, "strategy value, in wei for FIXED and percent otherwise")
	feesCmd.Flags().Int64Var(&feeBuffer, "buffer", eip1559.DefaultBufferPercent, "percent added to the suggested priority fee, defaults to max_priority_fee_buffer_percent from the config")
}
