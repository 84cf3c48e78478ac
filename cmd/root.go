package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "topiq",
	Short: "Personal quiz app with offline-first progress tracking",
	Long: "Topiq generates quizzes on any topic and tracks your per-topic " +
		"accuracy, keeping progress available offline and reconciling with " +
		"the backend when the network allows.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the backend SQLite database (overrides TOPIQ_DB)")
	rootCmd.PersistentFlags().String("data-dir", "", "Local cache directory (overrides TOPIQ_DATA_DIR)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log sync activity to stderr")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
