package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/bundler"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt <userOpHash>",
	Short: "look up a submitted user operation",
	Long:  `Print the receipt of a user operation, or whether the bundler still holds it in its mempool`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, w, err := loadWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		hash := args[0]
		receipt, err := w.Bundler.GetUserOperationReceipt(cmd.Context(), hash)
		if err != nil {
			return err
		}
		if !bundler.IsNull(receipt) {
			return printJSON(cmd, receipt)
		}

		op, err := w.Bundler.GetUserOperationByHash(cmd.Context(), hash)
		if err != nil {
			return err
		}
		if bundler.IsNull(op) {
			return fmt.Errorf("user operation %s not found", hash)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user operation %s is pending\n", hash)
		return nil
	},
}

func printJSON(cmd *cobra.Command, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	_, err := newPrinter(cmd).Println(v)
	return err
}

func init() {
	rootCmd.AddCommand(receiptCmd)
}
