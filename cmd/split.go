package cmd

import (
	"fmt"

	"rtoken/internal/rmath"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// command for previewing how revenue is split across the configured destinations
var splitCmd = &cobra.Command{
	Use:   "split <amount> [rsr_total rtoken_total]",
	Short: "preview the revenue split of an amount",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}

		var rsrTotal, rTokenTotal uint64
		for _, d := range cfg.Distribution {
			rsrTotal += d.RSRDist
			rTokenTotal += d.RTokenDist
		}

		if len(args) == 3 {
			if rsrTotal, err = cast.ToUint64E(args[1]); err != nil {
				return err
			}
			if rTokenTotal, err = cast.ToUint64E(args[2]); err != nil {
				return err
			}
		}

		if rsrTotal+rTokenTotal == 0 {
			return fmt.Errorf("no revenue destinations")
		}

		toRSR, toRToken := rmath.SplitRevenue(amount, rsrTotal, rTokenTotal)
		cmd.Printf("rsr trader:    %s\n", toRSR)
		cmd.Printf("rtoken trader: %s\n", toRToken)

		if len(args) == 1 {
			for _, d := range cfg.Distribution {
				cmd.Printf("  %s: rsr %s rtoken %s\n", d.Dest,
					rmath.ShareOf(toRSR, d.RSRDist, rsrTotal),
					rmath.ShareOf(toRToken, d.RTokenDist, rTokenTotal))
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
