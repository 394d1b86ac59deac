package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/examprep/internal/bot"
	"github.com/example/examprep/internal/excel"
	"github.com/example/examprep/internal/scheduler"
	"github.com/example/examprep/internal/store"
	"github.com/example/examprep/pkg/models"
)

var (
	importSubject     string
	importSheet       string
	historyDays       int
	statsDays         int
	subjectCategory   string
	subjectDifficulty string
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve the Telegram bot with study reminders",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

var loginCmd = &cobra.Command{
	Use:   "login [email] [password]",
	Short: "Log in to an account",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		user, err := st.Authenticate(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d coins)\n", user.Name, user.Coins)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current account",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		if err := st.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	}),
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects with their accuracy",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		if st.CurrentUser() == nil {
			return store.ErrAuthenticationRequired
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDIFFICULTY\tQUESTIONS\tACCURACY")
		for _, s := range st.GetSubjects() {
			accuracy := "-"
			if p, ok := st.GetSubjectProgress(s.ID); ok {
				accuracy = fmt.Sprintf("%.0f%%", p.Accuracy)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Category, s.Difficulty, s.QuestionsCount, accuracy)
		}
		return w.Flush()
	}),
}

var addSubjectCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		difficulty, err := models.ParseDifficulty(subjectDifficulty)
		if err != nil {
			return err
		}
		sub, err := st.AddSubject(ctx, models.SubjectInput{
			Name:       strings.Join(args, " "),
			Category:   subjectCategory,
			Difficulty: difficulty,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added subject %s (%s)\n", sub.Name, sub.ID)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import [flashcards|questions] [file]",
	Short: "Import flashcards or questions from an Excel or CSV file",
	Long: `Imports rows from an .xlsx or .csv file. The first row is a header.

Flashcards: front, back
Questions:  text, A, B, C, D, correct (A-D), explanation, difficulty`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"flashcards", "questions"},
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		importConfig := excel.DefaultImportConfig()
		importConfig.FilePath = args[1]
		importConfig.SheetName = importSheet
		if importSubject != "" {
			sub, ok := findSubject(st, importSubject)
			if !ok {
				return fmt.Errorf("subject %s: %w", importSubject, store.ErrNotFound)
			}
			importConfig.SubjectID = sub.ID
		}

		var (
			result *excel.ImportResult
			err    error
		)
		switch args[0] {
		case "flashcards":
			result, err = excel.ImportFlashcards(ctx, st, importConfig)
		case "questions":
			result, err = excel.ImportQuestions(ctx, st, importConfig)
		default:
			return fmt.Errorf("unknown import kind %q, expected flashcards or questions", args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processed %d rows: %d created, %d skipped\n", result.TotalProcessed, result.Created, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show study minutes per day",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		if st.CurrentUser() == nil {
			return store.ErrAuthenticationRequired
		}
		out := cmd.OutOrStdout()
		for _, d := range st.GetStudyHistory(historyDays) {
			fmt.Fprintf(out, "%s %4d min %s\n", d.Date, d.Minutes, strings.Repeat("#", d.Minutes/10))
		}
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz and study statistics",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		user := st.CurrentUser()
		if user == nil {
			return store.ErrAuthenticationRequired
		}
		stats := st.OverallStats(statsDays)
		grade := store.GradePerformance(float64(stats.AverageAccuracy))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "User\t%s\n", user.Name)
		fmt.Fprintf(w, "Coins\t%d\n", user.Coins)
		fmt.Fprintf(w, "Quizzes\t%d\n", stats.TotalQuizzes)
		fmt.Fprintf(w, "Accuracy\t%d%% (%s, %s)\n", stats.AverageAccuracy, grade.Level, grade.Badge)
		fmt.Fprintf(w, "Study time\t%d min in %d days\n", stats.TotalStudyMinutes, statsDays)
		fmt.Fprintf(w, "Streak\t%d days\n", stats.StudyStreak)

		summary := st.ProgressSummary()
		for i, label := range summary.Labels {
			fmt.Fprintf(w, "  %s\t%.0f%%\n", label, summary.Scores[i])
		}
		return w.Flush()
	}),
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "List store items",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPRICE\tEQUIPPED")
		for _, item := range st.GetStoreItems() {
			equipped := ""
			if st.OwnsItem(item.ID) {
				equipped = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.Name, item.Type, item.Price, equipped)
		}
		return w.Flush()
	}),
}

var buyCmd = &cobra.Command{
	Use:   "buy [id]",
	Short: "Buy a store item with coins",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		user, err := st.PurchaseStoreItem(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purchased. %d coins left\n", user.Coins)
		return nil
	}),
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Check the daily goal now and print a reminder if one is due",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		sched := scheduler.New(st, printNotifier{w: cmd.OutOrStdout()}, schedulerConfig(), logger)
		sent, err := sched.RunManualCheck(ctx)
		if err != nil {
			return err
		}
		if !sent {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remind about")
		}
		return nil
	}),
}

// withStore opens the store around a command
func withStore(fn func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, release, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer release()
		return fn(ctx, cmd, st, args)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, release, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	b := bot.New(nil, st, bot.Config{
		Token:       cfg.Telegram.Token,
		OwnerChatID: cfg.Telegram.OwnerChatID,
		QuizSize:    cfg.Telegram.QuizSize,
		HistoryDays: cfg.Telegram.HistoryDays,
		ReviewBatch: cfg.Telegram.ReviewBatch,
	}, logger)

	if cfg.Reminders.Enabled {
		sched := scheduler.New(st, b, schedulerConfig(), logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	logger.Info("Bot starting", zap.Int64("owner_chat_id", cfg.Telegram.OwnerChatID))
	return b.Start(ctx)
}

func schedulerConfig() scheduler.Config {
	// Validated by config.Load
	loc, _ := cfg.Location()
	return scheduler.Config{
		StartHour:        cfg.Reminders.StartHour,
		EndHour:          cfg.Reminders.EndHour,
		DailyGoalMinutes: cfg.Reminders.DailyGoalMinutes,
		Location:         loc,
	}
}

// findSubject resolves a subject by id or case-insensitive name
func findSubject(st *store.Store, ref string) (models.Subject, bool) {
	for _, s := range st.GetSubjects() {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	return models.Subject{}, false
}

// printNotifier writes reminders to the terminal
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) SendReminder(ctx context.Context, r scheduler.Reminder) error {
	_, err := fmt.Fprintf(n.w, "%d minutes left to reach today's goal, %d flashcards due\n", r.RemainingMinutes, r.DueFlashcards)
	return err
}
