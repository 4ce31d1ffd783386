package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/southeastwestnorth/tanzimapp/internal/model"
)

// Format identifies the tabular source format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath sniffs the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported question bank file type: %s", filepath.Ext(path))
	}
}

// Options controls loading behavior.
type Options struct {
	// Shuffle applies a one-time permutation to the row order. The option
	// order within each question is never touched.
	Shuffle bool
	// Rand is the randomness source for Shuffle. Required when Shuffle is
	// set, so tests can fix the seed.
	Rand *rand.Rand
}

// Bank is a loaded, normalized question bank. Question identity is the
// positional index in Questions, after any load-time permutation.
type Bank struct {
	Questions []model.QuestionRecord
	// Dropped counts rows rejected individually (fewer than two usable
	// options, or no prompt/answer cell).
	Dropped int
	// DroppedRows carries the per-row reasons behind Dropped.
	DroppedRows []RowError
}

// emptyMarkers are cell values treated as "no option in this slot". The
// spreadsheet exports this service sees use all of them interchangeably.
var emptyMarkers = map[string]struct{}{
	"":     {},
	"-":    {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"none": {},
	"null": {},
}

// columns is the resolved header layout.
type columns struct {
	prompt  int
	answer  int
	options [4]int // -1 when the slot is absent
}

// fieldAliases maps normalized header names to logical fields. Option slots
// are handled separately in resolveColumns.
var fieldAliases = map[string]string{
	"question": "prompt",
	"q":        "prompt",
	"problem":  "prompt",
	"prompt":   "prompt",

	"answer":         "answer",
	"correct":        "answer",
	"key":            "answer",
	"ans":            "answer",
	"correct answer": "answer",
	"correct_answer": "answer",
	"answer key":     "answer",
}

// optionAliases maps normalized header names to an option slot 0..3.
var optionAliases = map[string]int{
	"a": 0, "b": 1, "c": 2, "d": 3,
	"option a": 0, "option b": 1, "option c": 2, "option d": 3,
	"option_a": 0, "option_b": 1, "option_c": 2, "option_d": 3,
	"opt a": 0, "opt b": 1, "opt c": 2, "opt d": 3,
	"option 1": 0, "option 2": 1, "option 3": 2, "option 4": 3,
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// resolveColumns maps a header row to the logical fields through the alias
// tables. Prompt and answer are required; option slots are best-effort.
func resolveColumns(header []string) (*columns, error) {
	cols := &columns{prompt: -1, answer: -1, options: [4]int{-1, -1, -1, -1}}

	for i, h := range header {
		n := normalizeHeader(h)
		if n == "" {
			continue
		}
		if field, ok := fieldAliases[n]; ok {
			switch field {
			case "prompt":
				if cols.prompt == -1 {
					cols.prompt = i
				}
			case "answer":
				if cols.answer == -1 {
					cols.answer = i
				}
			}
			continue
		}
		if slot, ok := optionAliases[n]; ok {
			if cols.options[slot] == -1 {
				cols.options[slot] = i
			}
		}
	}

	if cols.prompt == -1 {
		return nil, &MissingColumnError{Field: "prompt"}
	}
	if cols.answer == -1 {
		return nil, &MissingColumnError{Field: "correct_answer"}
	}
	return cols, nil
}

// Load parses a tabular byte stream into a Bank. Every call re-reads the
// source and, when opts.Shuffle is set, re-permutes — nothing is cached.
func Load(r io.Reader, format Format, opts Options) (*Bank, error) {
	var rows [][]string
	var err error

	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported question bank format: %q", format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	bank := &Bank{}
	for i := 1; i < len(rows); i++ {
		rowNo := i + 1 // 1-based, header included
		rec, rejectReason := buildRecord(rows[i], cols)
		if rejectReason != "" {
			bank.Dropped++
			bank.DroppedRows = append(bank.DroppedRows, RowError{Row: rowNo, Reason: rejectReason})
			continue
		}
		bank.Questions = append(bank.Questions, rec)
	}

	if len(bank.Questions) == 0 {
		return nil, ErrEmptySource
	}

	if opts.Shuffle {
		if opts.Rand == nil {
			return nil, errors.New("shuffle requested without a random source")
		}
		opts.Rand.Shuffle(len(bank.Questions), func(a, b int) {
			bank.Questions[a], bank.Questions[b] = bank.Questions[b], bank.Questions[a]
		})
	}

	return bank, nil
}

// LoadFile opens path and loads it, sniffing the format from the extension.
func LoadFile(path string, opts Options) (*Bank, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Load(f, format, opts)
}

// buildRecord normalizes one data row. It returns a non-empty reject reason
// instead of a record when the row is unusable on its own.
func buildRecord(row []string, cols *columns) (model.QuestionRecord, string) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	prompt := cell(cols.prompt)
	if isEmptyCell(prompt) {
		return model.QuestionRecord{}, "empty prompt"
	}

	answer := cell(cols.answer)
	if isEmptyCell(answer) {
		return model.QuestionRecord{}, "empty correct answer"
	}

	var options []string
	for _, idx := range cols.options {
		v := cell(idx)
		if idx == -1 || isEmptyCell(v) {
			continue
		}
		options = append(options, v)
	}
	if len(options) < 2 {
		return model.QuestionRecord{}, fmt.Sprintf("only %d usable option(s), need at least 2", len(options))
	}

	return model.QuestionRecord{
		Prompt:        prompt,
		Options:       options,
		CorrectAnswer: answer,
	}, ""
}

func isEmptyCell(v string) bool {
	_, empty := emptyMarkers[strings.ToLower(v)]
	return empty
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read excel rows: %w", err)
	}
	return rows, nil
}
