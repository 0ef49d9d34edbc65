package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/aa-provider/core/chainio/aa"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <callData>",
	Short: "decode SimpleAccount calldata",
	Long:  `Decode the callData of a user operation into the execute or executeBatch calls it performs`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := hexutil.Decode(args[0])
		if err != nil {
			return fmt.Errorf("invalid callData: %w", err)
		}
		calls, err := aa.DecodeCallData(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, c := range calls {
			fmt.Fprintf(out, "%d: %s value=%s data=%s\n", i, c.Target.Hex(), c.Value, hexutil.Encode(c.Data))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
