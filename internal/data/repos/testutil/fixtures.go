package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

// FiveSeedPages returns pages 1..5 of id with predictable text and urls.
func FiveSeedPages(id storybook.BookID) []storybook.StoryRecord {
	out := make([]storybook.StoryRecord, 0, 5)
	for i := 1; i <= 5; i++ {
		out = append(out, storybook.StoryRecord{
			BookID:          id,
			PageNumber:      i,
			PageText:        fmt.Sprintf("page %d", i),
			IllustrationURL: fmt.Sprintf("https://img.example/%s/%d.png", id, i),
		})
	}
	return out
}

// FakeSheets is an in-memory gcp.Sheets keyed by tab title.
type FakeSheets struct {
	mu     sync.Mutex
	Tabs   map[string][][]string
	ReadFn func(a1 string) error
}

func NewFakeSheets() *FakeSheets {
	return &FakeSheets{Tabs: map[string][][]string{}}
}

func tabOf(a1 string) string {
	for i := 0; i < len(a1); i++ {
		if a1[i] == '!' {
			return a1[:i]
		}
	}
	return a1
}

func (f *FakeSheets) ReadRange(ctx context.Context, a1 string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadFn != nil {
		if err := f.ReadFn(a1); err != nil {
			return nil, err
		}
	}
	rows := f.Tabs[tabOf(a1)]
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *FakeSheets) AppendRow(ctx context.Context, a1 string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = fmt.Sprint(v)
	}
	tab := tabOf(a1)
	f.Tabs[tab] = append(f.Tabs[tab], cells)
	return nil
}

func (f *FakeSheets) EnsureSheet(ctx context.Context, title string, header []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Tabs[title]; ok {
		return nil
	}
	f.Tabs[title] = [][]string{append([]string(nil), header...)}
	return nil
}
