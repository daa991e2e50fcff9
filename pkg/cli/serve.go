package cli

import (
	"github.com/mtc-analytics/patlens/pkg/gateway"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway.NewGateway()
		if err != nil {
			PrintError(err)
			return err
		}
		return gw.Start()
	},
}
