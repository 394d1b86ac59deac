package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/examprep/internal/config"
	"github.com/example/examprep/internal/logging"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "examprep",
	Short: "Exam preparation assistant",
	Long: `examprep keeps subjects, generated quizzes, flashcards, cheat sheets,
study sessions and a coin store in a single snapshot.

Run "examprep bot" to serve the Telegram front-end, or use the other
commands to work with the same data from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.JSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	importCmd.Flags().StringVar(&importSubject, "subject", "", "Subject id or name the records are filed under")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Sheet name (default: first sheet)")
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "Window for study time and streak")
	addSubjectCmd.Flags().StringVar(&subjectCategory, "category", "", "Subject category")
	addSubjectCmd.Flags().StringVar(&subjectDifficulty, "difficulty", "medium", "easy, medium or hard")

	subjectsCmd.AddCommand(addSubjectCmd)
	storeCmd.AddCommand(buyCmd)

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(remindCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
