package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"sitedata/internal/backup"
	"sitedata/pkg/logger"
	"sitedata/router"
	"sitedata/socket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the site-data server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, notifier, backend, client, err := bootstrap()
		if err != nil {
			return err
		}

		hub := socket.NewHub()
		go hub.Run()
		// Writes through this process reach other processes via the hub.
		notifier.SetRemote(hub)

		scheduler := backup.NewScheduler(backend, client, cfg)
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()

		handler := router.Setup(cfg, client, hub)

		logger.Sugar.Infof("sitedata listening on %s (backend: %s)", cfg.Addr, cfg.Backend)
		return http.ListenAndServe(cfg.Addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
