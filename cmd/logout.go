package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local profile snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.account.SignOut(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Signed out.")
		return nil
	},
}
