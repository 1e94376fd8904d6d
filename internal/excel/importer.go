// Package excel imports curriculum content from spreadsheets. Authors draft
// levels in Excel or CSV; the importer converts the rows into the YAML
// curriculum files the catalog loads.
package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/example/drillbot/pkg/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var errSkipRow = errors.New("skipping row")

// ImportConfig defines the import configuration.
type ImportConfig struct {
	FilePath            string // Path to the Excel or CSV file
	Language            string // Curriculum language id, e.g. "tr"
	Name                string // Human-readable language name
	Voice               string // TTS voice identifier
	LevelColumn         string // Column with the level number
	KindColumn          string // Column with the item kind (phrase, frame, word)
	IDColumn            string // Column with the item id (generated when empty)
	TextColumn          string // Column with the text or frame template
	TranslationColumn   string // Column with the translation or frame description
	PronunciationColumn string // Column with the pronunciation
	RefsColumn          string // Column with word ids / example ids, ";"-separated
	AudioColumn         string // Column with the TTS query override
	SheetName           string // Name of the sheet to import
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		LevelColumn:         "A",
		KindColumn:          "B",
		IDColumn:            "C",
		TextColumn:          "D",
		TranslationColumn:   "E",
		PronunciationColumn: "F",
		RefsColumn:          "G",
		AudioColumn:         "H",
		SheetName:           "Sheet1",
		StartRow:            2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	TotalProcessed int
	Phrases        int
	Frames         int
	Words          int
	Skipped        int
	Errors         []string
}

// curriculumFile mirrors the YAML shape the catalog loader reads.
type curriculumFile struct {
	Language string             `yaml:"language"`
	Name     string             `yaml:"name"`
	Voice    string             `yaml:"voice"`
	Levels   map[int]*levelFile `yaml:"levels"`
}

type levelFile struct {
	Phrases []models.Phrase `yaml:"phrases"`
	Frames  []models.Frame  `yaml:"frames"`
	Words   []models.Word   `yaml:"words"`
}

// ImportCurriculum reads rows from an Excel or CSV file and writes the
// curriculum YAML for config.Language into outDir.
func ImportCurriculum(config ImportConfig, outDir string) (*ImportResult, error) {
	if config.Language == "" {
		return nil, fmt.Errorf("import requires a language id")
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	file := &curriculumFile{
		Language: config.Language,
		Name:     config.Name,
		Voice:    config.Voice,
		Levels:   make(map[int]*levelFile),
	}
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		if err := processRow(row, config, file, result); err != nil {
			if errors.Is(err, errSkipRow) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	if err := writeCurriculum(file, outDir); err != nil {
		return nil, err
	}
	return result, nil
}

// readExcel loads all rows of the configured sheet.
func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV loads all rows of a CSV file.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

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

// processRow converts one spreadsheet row into a curriculum item.
func processRow(row []string, config ImportConfig, file *curriculumFile, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	levelText := cell(config.LevelColumn)
	text := cell(config.TextColumn)
	if levelText == "" || text == "" {
		return errSkipRow
	}

	level, err := strconv.Atoi(levelText)
	if err != nil || level < 1 {
		return fmt.Errorf("invalid level %q", levelText)
	}

	id := cell(config.IDColumn)
	if id == "" {
		id = uuid.NewString()
	}
	translation := cell(config.TranslationColumn)
	refs := splitRefs(cell(config.RefsColumn))

	lvl := file.Levels[level]
	if lvl == nil {
		lvl = &levelFile{}
		file.Levels[level] = lvl
	}

	kind := models.ItemKind(strings.ToLower(cell(config.KindColumn)))
	switch kind {
	case models.KindPhrase, "":
		lvl.Phrases = append(lvl.Phrases, models.Phrase{
			ID:            id,
			Text:          text,
			Translation:   translation,
			Pronunciation: cell(config.PronunciationColumn),
			WordIDs:       refs,
			AudioQuery:    cell(config.AudioColumn),
		})
		result.Phrases++
	case models.KindFrame:
		lvl.Frames = append(lvl.Frames, models.Frame{
			ID:               id,
			Template:         text,
			Description:      translation,
			Slots:            parseSlots(text),
			ExamplePhraseIDs: refs,
		})
		result.Frames++
	case models.KindWord:
		lvl.Words = append(lvl.Words, models.Word{
			ID:            id,
			Text:          text,
			Translation:   translation,
			Pronunciation: cell(config.PronunciationColumn),
		})
		result.Words++
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}

// writeCurriculum marshals the curriculum and writes dir/<language>.yaml.
func writeCurriculum(file *curriculumFile, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create content directory: %w", err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal curriculum: %w", err)
	}

	path := filepath.Join(dir, file.Language+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write curriculum %s: %w", path, err)
	}
	return nil
}

// splitRefs parses a ";"-separated reference cell.
func splitRefs(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

// parseSlots extracts bracketed placeholders from a frame template. Slot
// descriptions are left for the author to fill in.
func parseSlots(template string) map[string]string {
	var names []string
	rest := template
	for {
		open := strings.Index(rest, "[")
		if open < 0 {
			break
		}
		end := strings.Index(rest[open:], "]")
		if end < 0 {
			break
		}
		name := rest[open+1 : open+end]
		if name != "" {
			names = append(names, name)
		}
		rest = rest[open+end+1:]
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	slots := make(map[string]string, len(names))
	for _, n := range names {
		slots[n] = ""
	}
	return slots
}

// columnToIndex converts an Excel column letter ("A", "B", ... "AA") to a
// zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
