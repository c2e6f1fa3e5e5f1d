package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

type fileColor struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type fileCell struct {
	Text       string     `json:"text"`
	Color      string     `json:"color"`
	Background *fileColor `json:"background"`
}

type fileSheet struct {
	Name string       `json:"name"`
	Rows [][]fileCell `json:"rows"`
}

type fileDocument struct {
	Title  string      `json:"title"`
	Sheets []fileSheet `json:"sheets"`
}

// GridFileRepository reads a timetable grid exported as JSON.
type GridFileRepository struct {
	path   string
	logger *zap.Logger
}

// NewGridFileRepository builds a file backed grid source.
func NewGridFileRepository(path string, logger *zap.Logger) *GridFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridFileRepository{path: path, logger: logger}
}

// ID identifies the source in cache keys.
func (r *GridFileRepository) ID() string {
	return "file:" + filepath.Base(r.path)
}

// Load reads and decodes the grid file.
func (r *GridFileRepository) Load(ctx context.Context) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("decode grid file %s: %w", r.path, err)
	}
	r.logger.Debug("grid file loaded", zap.String("path", r.path), zap.Int("sheets", len(doc.Sheets)))
	return doc, nil
}

// DecodeDocument parses the JSON grid format. A cell's background channels,
// when present, take precedence over its literal color signature.
func DecodeDocument(reader io.Reader) (*models.Document, error) {
	var raw fileDocument
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	doc := &models.Document{Title: raw.Title, Sheets: make([]models.Sheet, 0, len(raw.Sheets))}
	for _, sheet := range raw.Sheets {
		rows := make([][]models.Cell, len(sheet.Rows))
		for i, row := range sheet.Rows {
			cells := make([]models.Cell, len(row))
			for j, cell := range row {
				cells[j] = models.Cell{Text: cell.Text, Color: cell.Color}
				if bg := cell.Background; bg != nil {
					cells[j].Color = models.ColorSignature(bg.Red, bg.Green, bg.Blue)
				}
			}
			rows[i] = cells
		}
		doc.Sheets = append(doc.Sheets, models.Sheet{Name: sheet.Name, Rows: rows})
	}
	return doc, nil
}
