package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Replace a document with the contents of a JSON file",
	Long: `Writes straight through the configured backend. Other running
processes pick the change up on their fallback refresh; only writes made
through a running server announce immediately.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, _, client, err := bootstrap()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := client.Save(context.Background(), args[0], data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
