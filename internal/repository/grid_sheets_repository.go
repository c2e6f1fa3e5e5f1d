package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

const (
	sheetTitlesFields = "sheets.properties.title"
	gridDataFields    = "properties.title,sheets(properties.title,data(startRow,startColumn,rowData.values(formattedValue,effectiveFormat.backgroundColor)))"
)

// SheetsConfig carries the spreadsheet identity and credentials.
type SheetsConfig struct {
	SpreadsheetID   string
	APIKey          string
	CredentialsFile string
	Timeout         time.Duration
}

// GridSheetsRepository reads the weekday tabs of a Google spreadsheet.
type GridSheetsRepository struct {
	service *sheets.Service
	cfg     SheetsConfig
	logger  *zap.Logger
}

// NewGridSheetsRepository builds a Sheets API client. Extra options are appended
// after the credentials derived from cfg.
func NewGridSheetsRepository(ctx context.Context, cfg SheetsConfig, logger *zap.Logger, extra ...option.ClientOption) (*GridSheetsRepository, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GridSheetsRepository{service: svc, cfg: cfg, logger: logger}, nil
}

// ID identifies the source in cache keys.
func (r *GridSheetsRepository) ID() string {
	return "sheets:" + r.cfg.SpreadsheetID
}

// Load fetches cell text and background colours of every weekday tab.
func (r *GridSheetsRepository) Load(ctx context.Context) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	listing, err := r.service.Spreadsheets.Get(r.cfg.SpreadsheetID).
		Fields(sheetTitlesFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, r.mapError(err)
	}

	ranges := weekdayRanges(listing)
	if len(ranges) == 0 {
		r.logger.Warn("spreadsheet has no weekday tabs", zap.String("spreadsheet", r.cfg.SpreadsheetID))
		return &models.Document{Sheets: []models.Sheet{}}, nil
	}

	spreadsheet, err := r.service.Spreadsheets.Get(r.cfg.SpreadsheetID).
		Ranges(ranges...).
		IncludeGridData(true).
		Fields(gridDataFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, r.mapError(err)
	}

	doc := documentFromSpreadsheet(spreadsheet)
	r.logger.Info("spreadsheet fetched",
		zap.String("spreadsheet", r.cfg.SpreadsheetID),
		zap.Strings("tabs", ranges),
	)
	return doc, nil
}

func (r *GridSheetsRepository) mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "spreadsheet not found")
	}
	return fmt.Errorf("fetch spreadsheet %s: %w", r.cfg.SpreadsheetID, err)
}

func weekdayRanges(listing *sheets.Spreadsheet) []string {
	ranges := make([]string, 0, len(models.Weekdays))
	for _, sheet := range listing.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		title := sheet.Properties.Title
		if models.WeekdayIndex(strings.TrimSpace(title)) < len(models.Weekdays) {
			ranges = append(ranges, quoteSheet(title))
		}
	}
	return ranges
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func documentFromSpreadsheet(spreadsheet *sheets.Spreadsheet) *models.Document {
	doc := &models.Document{Sheets: make([]models.Sheet, 0, len(spreadsheet.Sheets))}
	if spreadsheet.Properties != nil {
		doc.Title = spreadsheet.Properties.Title
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		out := models.Sheet{Name: sheet.Properties.Title}
		for _, grid := range sheet.Data {
			if grid != nil {
				out.Rows = placeGrid(out.Rows, grid)
			}
		}
		doc.Sheets = append(doc.Sheets, out)
	}
	return doc
}

// placeGrid copies a grid block into rows at its start offset, growing rows as needed.
func placeGrid(rows [][]models.Cell, grid *sheets.GridData) [][]models.Cell {
	startRow, startCol := int(grid.StartRow), int(grid.StartColumn)
	for i, rowData := range grid.RowData {
		r := startRow + i
		for len(rows) <= r {
			rows = append(rows, nil)
		}
		if rowData == nil {
			continue
		}
		for j, value := range rowData.Values {
			c := startCol + j
			for len(rows[r]) <= c {
				rows[r] = append(rows[r], models.Cell{})
			}
			rows[r][c] = cellFromData(value)
		}
	}
	return rows
}

func cellFromData(value *sheets.CellData) models.Cell {
	if value == nil {
		return models.Cell{}
	}
	cell := models.Cell{Text: value.FormattedValue}
	if format := value.EffectiveFormat; format != nil && format.BackgroundColor != nil {
		bg := format.BackgroundColor
		cell.Color = models.ColorSignature(bg.Red, bg.Green, bg.Blue)
	}
	return cell
}
