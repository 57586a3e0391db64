package cmd

import (
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price <feed>...",
	Short: "pull the latest price of feeds from the price oracle",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prices := providePriceService()

		for _, feed := range args {
			ticker, err := prices.PullPriceTicker(ctx, feed)
			if err != nil {
				cmd.PrintErrln(feed, err)
				continue
			}

			cmd.Printf("%s %s %s\n", feed, ticker.Price, ticker.UpdatedAt().Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
