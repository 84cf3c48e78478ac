package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup <email> <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
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

		p, err := a.account.SignUp(cmd.Context(), args[0], password, args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Welcome, %s! You are signed in.\n", p.Username)
		return nil
	},
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}
