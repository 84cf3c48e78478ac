package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-topic progress",
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

		p := a.engine.GetProfile(cmd.Context(), session.UserID)
		if p == nil {
			fmt.Println("No progress yet — take a quiz with 'topiq play'.")
			return nil
		}

		fmt.Printf("Progress for %s:\n\n", p.Username)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOPIC\tQUIZZES\tQUESTIONS\tCORRECT\tACCURACY")
		for _, topic := range a.engine.ListTopics(cmd.Context(), session.UserID) {
			tk := p.Knowledge(topic)
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\n",
				topic, tk.QuizzesTaken, tk.TotalQuestions, tk.CorrectAnswers, tk.Accuracy())
		}
		return w.Flush()
	},
}
