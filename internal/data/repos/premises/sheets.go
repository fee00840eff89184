package premises

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/gcp"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

const DefaultRange = "DB!A:G"

var sheetHeader = []string{
	"main_character", "main_character_name", "location", "theme",
	"sub_character_a", "sub_character_b", "storyline",
}

type sheetsRepo struct {
	sheets gcp.Sheets
	a1     string
	log    *logger.Logger

	headerMu sync.Mutex
	header   bool
}

// NewSheetsRepo reads premises from a1; the first row of the range is a header.
func NewSheetsRepo(sheets gcp.Sheets, a1 string, baseLog *logger.Logger) Repo {
	a1 = strings.TrimSpace(a1)
	if a1 == "" {
		a1 = DefaultRange
	}
	return &sheetsRepo{sheets: sheets, a1: a1, log: baseLog.With("repo", "PremiseSheetsRepo")}
}

func (r *sheetsRepo) List(ctx context.Context) ([]storybook.Premise, error) {
	rows, err := r.sheets.ReadRange(ctx, r.a1)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return []storybook.Premise{}, nil
	}
	out := make([]storybook.Premise, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		out = append(out, storybook.PremiseFromRow(row))
	}
	return out, nil
}

// ensureHeader writes the header row into an empty range so List never mistakes a premise for it.
func (r *sheetsRepo) ensureHeader(ctx context.Context) error {
	r.headerMu.Lock()
	defer r.headerMu.Unlock()
	if r.header {
		return nil
	}
	title, _, _ := strings.Cut(r.a1, "!")
	if err := r.sheets.EnsureSheet(ctx, title, sheetHeader); err != nil {
		return err
	}
	rows, err := r.sheets.ReadRange(ctx, r.a1)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		r.log.Info("writing premise header", "range", r.a1)
		row := make([]any, len(sheetHeader))
		for i, h := range sheetHeader {
			row[i] = h
		}
		if err := r.sheets.AppendRow(ctx, r.a1, row); err != nil {
			return err
		}
	}
	r.header = true
	return nil
}

func (r *sheetsRepo) Append(ctx context.Context, p storybook.Premise) error {
	if err := r.ensureHeader(ctx); err != nil {
		return err
	}
	fields := p.Fields()
	row := make([]any, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return r.sheets.AppendRow(ctx, r.a1, row)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
