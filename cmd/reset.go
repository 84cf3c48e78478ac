package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the local profile snapshot",
	Long: "Removes the device-local profile cache. Remote progress is " +
		"untouched and will be re-fetched on the next read.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cache.Clear(); err != nil {
			return err
		}
		fmt.Println("Local cache cleared.")
		return nil
	},
}
