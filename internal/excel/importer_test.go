package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/examprep/pkg/models"
)

type fakeSink struct {
	cards     []models.FlashcardInput
	questions []models.Question
	rejectAll bool
}

func (f *fakeSink) AddFlashcard(ctx context.Context, in models.FlashcardInput) (*models.Flashcard, error) {
	if f.rejectAll {
		return nil, errors.New("subject not found")
	}
	f.cards = append(f.cards, in)
	return &models.Flashcard{Front: in.Front, Back: in.Back}, nil
}

func (f *fakeSink) AddQuestions(ctx context.Context, subjectID string, qs []models.Question) ([]models.Question, error) {
	if f.rejectAll {
		return nil, errors.New("subject not found")
	}
	f.questions = append(f.questions, qs...)
	return qs, nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &row))
	}
	path := filepath.Join(t.TempDir(), "questions.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportFlashcards_CSV(t *testing.T) {
	path := writeCSV(t, "front,back\nMitochondria,Powerhouse of the cell\n,\nOsmosis,\nDNA, Deoxyribonucleic acid\n")
	sink := &fakeSink{}

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.SubjectID = "bio"
	res, err := ImportFlashcards(context.Background(), sink, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 4")

	require.Len(t, sink.cards, 2)
	assert.Equal(t, models.FlashcardInput{SubjectID: "bio", Front: "DNA", Back: "Deoxyribonucleic acid"}, sink.cards[1])
}

func TestImportQuestions_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"question", "a", "b", "c", "d", "correct", "explanation", "difficulty"},
		{"2+2?", "3", "4", "5", "6", "B", "Basic sums", "easy"},
		{"Largest planet?", "Mars", "Venus", "Jupiter", "Earth", "3", "", ""},
		{"Broken", "only", "two", "", "", "A"},
		{"Bad answer", "w", "x", "y", "z", "E"},
	})
	sink := &fakeSink{}

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.SubjectID = "general"
	res, err := ImportQuestions(context.Background(), sink, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, res.Errors, 2)

	require.Len(t, sink.questions, 2)
	assert.Equal(t, 1, sink.questions[0].CorrectIndex)
	assert.Equal(t, models.DifficultyEasy, sink.questions[0].Difficulty)
	assert.Equal(t, []string{"Mars", "Venus", "Jupiter", "Earth"}, sink.questions[1].Options)
	assert.Equal(t, 2, sink.questions[1].CorrectIndex)
}

func TestImportQuestions_RequiresSubject(t *testing.T) {
	_, err := ImportQuestions(context.Background(), &fakeSink{}, DefaultImportConfig())
	assert.Error(t, err)
}

func TestImport_SinkErrorsAreRowErrors(t *testing.T) {
	path := writeCSV(t, "front,back\na,b\nc,d\n")
	cfg := DefaultImportConfig()
	cfg.FilePath = path

	res, err := ImportFlashcards(context.Background(), &fakeSink{rejectAll: true}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Len(t, res.Errors, 2)
}

func TestImport_MissingFile(t *testing.T) {
	cfg := DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "nope.xlsx")
	_, err := ImportFlashcards(context.Background(), &fakeSink{}, cfg)
	assert.Error(t, err)
}

func TestParseCorrect(t *testing.T) {
	for in, want := range map[string]int{"a": 0, "D": 3, " 2 ": 1, "4": 3} {
		got, err := parseCorrect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseCorrect("5")
	assert.Error(t, err)
}
