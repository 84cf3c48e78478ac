package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <topic>",
	Short: "Show answered questions for a topic",
	Args:  cobra.ExactArgs(1),
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

		records := a.engine.HistoryForTopic(cmd.Context(), session.UserID, args[0])
		if len(records) == 0 {
			fmt.Println("No history for this topic.")
			return nil
		}

		for i, rec := range records {
			fmt.Printf("%d. %s\n", i+1, rec.QuestionText)
			for j, opt := range rec.Options {
				marker := " "
				if j == rec.CorrectOption {
					marker = "*"
				}
				fmt.Printf("   %s %s\n", marker, opt)
			}
		}
		return nil
	},
}
