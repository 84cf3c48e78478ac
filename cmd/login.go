package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		password, err := promptPassword()
		if err != nil {
			return err
		}

		session, err := a.account.SignIn(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		fmt.Printf("Signed in as %s.\n", session.Email)
		return nil
	},
}
