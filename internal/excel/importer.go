package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/examprep/pkg/models"
)

// Sink receives imported records. *store.Store satisfies it.
type Sink interface {
	AddFlashcard(ctx context.Context, in models.FlashcardInput) (*models.Flashcard, error)
	AddQuestions(ctx context.Context, subjectID string, questions []models.Question) ([]models.Question, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string // Path to the Excel or CSV file
	SubjectID string // Subject the records are filed under; optional for flashcards
	SheetName string // Name of the sheet to import; empty means the first sheet
	StartRow  int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		StartRow: 2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

var errEmptyRow = errors.New("empty row")

// Flashcard sheet columns
const (
	colFront = iota
	colBack
)

// Question sheet columns
const (
	colText = iota
	colOptionA
	colOptionB
	colOptionC
	colOptionD
	colCorrect
	colExplanation
	colDifficulty
)

// ImportFlashcards reads front/back pairs and adds them as flashcards
func ImportFlashcards(ctx context.Context, sink Sink, config ImportConfig) (*ImportResult, error) {
	return importRows(ctx, config, func(row []string) error {
		front, back := cell(row, colFront), cell(row, colBack)
		if front == "" && back == "" {
			return errEmptyRow
		}
		if front == "" || back == "" {
			return fmt.Errorf("front and back are both required")
		}
		_, err := sink.AddFlashcard(ctx, models.FlashcardInput{
			SubjectID: config.SubjectID,
			Front:     front,
			Back:      back,
		})
		return err
	})
}

// ImportQuestions reads multiple choice questions: text, four options, the
// correct option (A-D or 1-4), an explanation and an optional difficulty
func ImportQuestions(ctx context.Context, sink Sink, config ImportConfig) (*ImportResult, error) {
	if config.SubjectID == "" {
		return nil, fmt.Errorf("subject is required to import questions")
	}
	return importRows(ctx, config, func(row []string) error {
		q, err := parseQuestion(row)
		if err != nil {
			return err
		}
		_, err = sink.AddQuestions(ctx, config.SubjectID, []models.Question{q})
		return err
	})
}

func parseQuestion(row []string) (models.Question, error) {
	text := cell(row, colText)
	if text == "" && strings.Join(row, "") == "" {
		return models.Question{}, errEmptyRow
	}
	if text == "" {
		return models.Question{}, fmt.Errorf("question text cannot be empty")
	}

	options := make([]string, 0, models.OptionsPerQuestion)
	for c := colOptionA; c <= colOptionD; c++ {
		opt := cell(row, c)
		if opt == "" {
			return models.Question{}, fmt.Errorf("option %c cannot be empty", 'A'+rune(c-colOptionA))
		}
		options = append(options, opt)
	}

	correct, err := parseCorrect(cell(row, colCorrect))
	if err != nil {
		return models.Question{}, err
	}

	q := models.Question{
		Text:         text,
		Options:      options,
		CorrectIndex: correct,
		Explanation:  cell(row, colExplanation),
	}
	if d := cell(row, colDifficulty); d != "" {
		difficulty, err := models.ParseDifficulty(d)
		if err != nil {
			return models.Question{}, err
		}
		q.Difficulty = difficulty
	}
	return q, nil
}

// parseCorrect accepts a letter A-D or a 1-based number
func parseCorrect(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'D' {
		return int(s[0] - 'A'), nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= models.OptionsPerQuestion {
		return n - 1, nil
	}
	return 0, fmt.Errorf("correct answer must be A-D or 1-4, got %q", s)
}

// importRows feeds every data row to process and collects per-row errors
func importRows(ctx context.Context, config ImportConfig, process func(row []string) error) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	startRow := config.StartRow
	if startRow < 1 {
		startRow = 1
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}
	for i, row := range rows {
		// Skip header rows
		if i < startRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.TotalProcessed++
		switch err := process(row); {
		case errors.Is(err, errEmptyRow):
			result.Skipped++
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		default:
			result.Created++
		}
	}
	return result, nil
}

// readRows loads all rows from an Excel or CSV file
func readRows(config ImportConfig) ([][]string, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return readCSV(file)
	}

	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
