package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a document from the configured backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, _, client, err := bootstrap()
		if err != nil {
			return err
		}
		// Absent, unreachable and malformed all print the empty document.
		fmt.Println(string(client.Get(context.Background(), args[0])))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
