package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "show the smart account address",
	Long:  `Print the owner, the counterfactual SimpleAccount address and whether it is deployed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, w, err := loadWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		sender, err := w.Account.GetAddress(cmd.Context())
		if err != nil {
			return err
		}
		initCode, err := w.Account.GetInitCode(cmd.Context())
		if err != nil {
			return err
		}
		nonce, err := w.Account.GetNonce(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "owner:    %s\n", w.Account.Owner().Hex())
		fmt.Fprintf(out, "account:  %s\n", sender.Hex())
		fmt.Fprintf(out, "deployed: %t\n", len(initCode) == 0)
		fmt.Fprintf(out, "nonce:    %s\n", nonce)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
