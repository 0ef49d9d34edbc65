package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/aa-provider/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "list supported chains",
	Long:  `List every chain a provider can be created for, with its default fee policy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := chains.Default()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNETWORK\tCURRENCY\tFEE POLICY")
		for _, c := range registry.Chains() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Network, c.NativeCurrency.Symbol, registry.PolicyFor(c.ID))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}
