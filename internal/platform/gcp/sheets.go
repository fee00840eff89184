package gcp

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// Sheets is a row-oriented view of one spreadsheet: full-range reads and row appends only.
type Sheets interface {
	ReadRange(ctx context.Context, a1 string) ([][]string, error)
	// AppendRow stores cells verbatim; Sheets does not parse them as formulas, dates or numbers.
	AppendRow(ctx context.Context, a1 string, row []any) error
	// EnsureSheet creates the tab with a header row when it does not exist yet.
	EnsureSheet(ctx context.Context, title string, header []string) error
}

type sheetsService struct {
	log           *logger.Logger
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheets(ctx context.Context, log *logger.Logger, creds Credentials, spreadsheetID string) (Sheets, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("missing SPREADSHEET_ID")
	}
	opts := append(ClientOptions(creds), option.WithScopes(sheets.SpreadsheetsScope))
	return newSheets(ctx, log, spreadsheetID, opts...)
}

func newSheets(ctx context.Context, log *logger.Logger, spreadsheetID string, opts ...option.ClientOption) (Sheets, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &sheetsService{
		log:           log.With("service", "gcp.Sheets"),
		svc:           svc,
		spreadsheetID: spreadsheetID,
	}, nil
}

func (s *sheetsService) ReadRange(ctx context.Context, a1 string) ([][]string, error) {
	ctx = ctxutil.Default(ctx)
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get %s: %w", a1, err)
	}
	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *sheetsService) AppendRow(ctx context.Context, a1 string, row []any) error {
	ctx = ctxutil.Default(ctx)
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, a1, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append %s: %w", a1, err)
	}
	return nil
}

func (s *sheetsService) EnsureSheet(ctx context.Context, title string, header []string) error {
	ctx = ctxutil.Default(ctx)
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	s.log.Info("creating sheet", "title", title)
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}}},
		},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets add sheet %s: %w", title, err)
	}
	if len(header) == 0 {
		return nil
	}
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return s.AppendRow(ctx, title+"!A1", row)
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
