package books

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/gcp"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

const DefaultSheetTitle = "GeneratedBooks"

var sheetHeader = []string{"book_id", "page_number", "page_text", "illustration_url"}

type sheetsRepo struct {
	sheets gcp.Sheets
	title  string
	log    *logger.Logger

	ensureMu sync.Mutex
	ensured  bool
}

func NewSheetsRepo(sheets gcp.Sheets, title string, baseLog *logger.Logger) Repo {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSheetTitle
	}
	return &sheetsRepo{sheets: sheets, title: title, log: baseLog.With("repo", "BooksSheetsRepo")}
}

// ensure creates the tab on first use. A failed attempt is retried on the next call.
func (r *sheetsRepo) ensure(ctx context.Context) error {
	r.ensureMu.Lock()
	defer r.ensureMu.Unlock()
	if r.ensured {
		return nil
	}
	if err := r.sheets.EnsureSheet(ctx, r.title, sheetHeader); err != nil {
		return err
	}
	r.ensured = true
	return nil
}

func (r *sheetsRepo) NextIdentifier(ctx context.Context) (storybook.BookID, error) {
	if err := r.ensure(ctx); err != nil {
		return "", err
	}
	rows, err := r.sheets.ReadRange(ctx, r.title+"!A:A")
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			ids = append(ids, row[0])
		}
	}
	return storybook.NextBookID(ids), nil
}

func (r *sheetsRepo) AppendPage(ctx context.Context, rec storybook.StoryRecord) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	row := []any{rec.BookID.String(), rec.PageNumber, rec.PageText, rec.IllustrationURL}
	return r.sheets.AppendRow(ctx, r.title+"!A:D", row)
}

func (r *sheetsRepo) FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.sheets.ReadRange(ctx, r.title+"!A:D")
	if err != nil {
		return nil, err
	}
	out := []storybook.StoryRecord{}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) != id.String() {
			continue
		}
		rec, err := recordFromRow(row)
		if err != nil {
			r.log.Warn("skipping malformed page row", "row", i+1, "book_id", id, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordFromRow(row []string) (storybook.StoryRecord, error) {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	n, err := strconv.Atoi(strings.TrimSpace(cell(1)))
	if err != nil {
		return storybook.StoryRecord{}, fmt.Errorf("page_number %q: %w", cell(1), err)
	}
	return storybook.StoryRecord{
		BookID:          storybook.BookID(strings.TrimSpace(cell(0))),
		PageNumber:      n,
		PageText:        cell(2),
		IllustrationURL: cell(3),
	}, nil
}
