package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"sitedata/config"
	"sitedata/notify"
	"sitedata/pkg/logger"
	"sitedata/store"
)

var rootCmd = &cobra.Command{
	Use:   "sitedata",
	Short: "Live JSON document store for the community site",
	Long: `sitedata serves the site's named JSON documents (events, reflections,
gallery) from one configured backend, gates writes behind the admin
allowlist, and pushes change announcements to subscribed readers.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and wires the backend, notifier and
// client shared by every subcommand.
func bootstrap() (*config.Config, *notify.Notifier, store.Backend, *store.Client, error) {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	notifier := notify.New()
	backend, err := store.NewBackend(cfg, notifier)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	client := store.NewClient(backend, notifier)
	return cfg, notifier, backend, client, nil
}
