package storybook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	BookIDPrefix = "Ehon-"
	FirstBookID  = BookID("Ehon-00001")

	DefaultPageCount = 5
)

var bookIDPattern = regexp.MustCompile(`^Ehon-(\d{5,})$`)

// BookID identifies a generated storybook, e.g. Ehon-00042. Assigned once at publish time.
type BookID string

func (id BookID) String() string { return string(id) }

// Number returns the numeric suffix, or false when id does not match the identifier pattern.
func (id BookID) Number() (int, bool) {
	m := bookIDPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func FormatBookID(n int) BookID {
	return BookID(fmt.Sprintf("%s%05d", BookIDPrefix, n))
}

// ParseBookID validates user-entered identifiers.
func ParseBookID(raw string) (BookID, error) {
	id := BookID(strings.TrimSpace(raw))
	if id == "" {
		return "", ErrBlankBookID
	}
	if _, ok := id.Number(); !ok {
		return "", fmt.Errorf("%w: %q", ErrMalformedBookID, raw)
	}
	return id, nil
}

// NextBookID returns max(existing suffix)+1, ignoring values that do not match the pattern.
func NextBookID(existing []string) BookID {
	max := 0
	found := false
	for _, raw := range existing {
		n, ok := BookID(strings.TrimSpace(raw)).Number()
		if !ok {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	if !found {
		return FirstBookID
	}
	return FormatBookID(max + 1)
}

// StoryRecord is one persisted page row.
type StoryRecord struct {
	BookID          BookID `json:"book_id"`
	PageNumber      int    `json:"page_number"`
	PageText        string `json:"page_text"`
	IllustrationURL string `json:"illustration_url"`
}

type Book struct {
	ID    BookID        `json:"book_id"`
	Pages []StoryRecord `json:"pages"`
}

// BookFromRecords groups rows that were already filtered to one identifier.
func BookFromRecords(id BookID, rows []StoryRecord) Book {
	pages := make([]StoryRecord, len(rows))
	copy(pages, rows)
	return Book{ID: id, Pages: pages}
}
