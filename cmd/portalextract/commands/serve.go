package commands

import (
	"time"

	"portalextract/internal/httpapi"
	"portalextract/internal/telemetry"
	"portalextract/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var serveListen *string

func init() {
	serveListen = serveCmd.Flags().String("listen", "", "The address to listen on, defaults to listen from the config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--listen :8080]",
	Short: "Serves extraction over http.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := config.Listen
		if cmd.Flags().Changed("listen") {
			listen = *serveListen
		}
		handler := httpapi.NewHandler(reg, telemetry.NewScopedAPI("httpapi", telemetry.SlogAPI{}))
		return serviceutil.ServeHttp(cmd.Context(), listen, handler, 10*time.Second)
	},
}
