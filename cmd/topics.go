package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics you have studied",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.requireSession(cmd)
		if err != nil {
			return err
		}

		topics := a.engine.ListTopics(cmd.Context(), session.UserID)
		if len(topics) == 0 {
			fmt.Println("No topics yet — take a quiz with 'topiq play'.")
			return nil
		}
		for _, t := range topics {
			fmt.Println(t)
		}
		return nil
	},
}
