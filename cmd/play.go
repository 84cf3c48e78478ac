package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/topiq/internal/engine"
	"github.com/abhisek/topiq/internal/profile"
	"github.com/abhisek/topiq/internal/quizgen"
)

var playCmd = &cobra.Command{
	Use:   "play <topic>",
	Short: "Take a quiz on a topic",
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

		questionCount, _ := cmd.Flags().GetInt("questions")
		optionCount, _ := cmd.Flags().GetInt("options")
		topic := profile.NormalizeTopic(args[0])

		provider, err := quizgen.NewProviderFromEnv(cmd.Context())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		generator := quizgen.NewGenerator(provider, quizgen.DefaultGeneratorConfig())

		fmt.Printf("Generating %d questions about %q...\n\n", questionCount, topic)
		questions, err := generator.Generate(cmd.Context(), topic, questionCount, optionCount)
		if err != nil {
			return err
		}

		correct, records := runQuiz(session.UserID, topic, questions)

		outcome, err := a.engine.RecordQuizCompletion(
			cmd.Context(), session.UserID, topic, len(questions), correct, records)
		if err != nil {
			return fmt.Errorf("record completion: %w", err)
		}

		fmt.Printf("\nYou scored %d/%d on %q.\n", correct, len(questions), topic)
		if outcome != engine.ReconcileSynced {
			fmt.Println("Progress saved locally; it will sync when the backend is reachable.")
		}
		return nil
	},
}

func init() {
	playCmd.Flags().Int("questions", 5, "Number of questions to generate")
	playCmd.Flags().Int("options", 4, "Number of options per question")
}

// runQuiz walks the user through the questions on stdin and returns the
// correct count plus the history records for the completion.
func runQuiz(userID, topic string, questions []quizgen.Question) (int, []profile.HistoryRecord) {
	reader := bufio.NewReader(os.Stdin)
	correct := 0
	records := make([]profile.HistoryRecord, 0, len(questions))

	for i, q := range questions {
		fmt.Printf("%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Printf("   %d) %s\n", j+1, opt)
		}

		choice := readChoice(reader, len(q.Options))
		if choice == q.CorrectOption {
			correct++
			fmt.Println("   Correct!")
		} else {
			fmt.Printf("   Wrong — the answer was: %s\n", q.Options[q.CorrectOption])
		}
		fmt.Println()

		records = append(records, profile.HistoryRecord{
			UserID:        userID,
			Topic:         topic,
			QuestionText:  q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}

	return correct, records
}

// readChoice prompts until the user enters a number in [1, optionCount],
// returning the zero-based index.
func readChoice(reader *bufio.Reader, optionCount int) int {
	for {
		fmt.Print("   Your answer: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return -1
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 1 && n <= optionCount {
			return n - 1
		}
		fmt.Printf("   Enter a number between 1 and %d.\n", optionCount)
	}
}
