package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sitedata/live"
	"sitedata/pkg/logger"
	"sitedata/socket"
)

var watchServer string

var watchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Follow a document, printing it on every change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, notifier, _, client, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watcher := socket.NewWatcher(watchServer+"/ws?name="+name, notifier)
		go watcher.Run(ctx)

		manager := live.NewManager(client, notifier)
		manager.Interval = cfg.FallbackInterval
		cancel := manager.Subscribe(name, func(data json.RawMessage) {
			fmt.Println(string(data))
		}, func(err error) {
			logger.Sugar.Errorf("Reload of %s failed: %v", name, err)
		})
		defer cancel()

		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchServer, "server", "ws://localhost:8080", "server base URL for change announcements")
	rootCmd.AddCommand(watchCmd)
}
