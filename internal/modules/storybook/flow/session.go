package flow

import (
	"encoding/json"
	"time"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

// Flags guard the side effects that must run at most once per input.
type Flags struct {
	PremisesSampled   bool `json:"premises_sampled"`
	ImageAnalyzed     bool `json:"image_analyzed"`
	ThemesProposed    bool `json:"themes_proposed"`
	QuestionsProposed bool `json:"questions_proposed"`
	SeedSaved         bool `json:"seed_saved"`
	BookGenerated     bool `json:"book_generated"`
}

// Event is one user action. Only the fields relevant to Type are read.
type Event struct {
	Type    EventType          `json:"type"`
	Choice  *int               `json:"choice,omitempty"`
	Theme   string             `json:"theme,omitempty"`
	Answers []storybook.Answer `json:"answers,omitempty"`
	BookID  string             `json:"book_id,omitempty"`

	Image     []byte `json:"-"`
	ImageMime string `json:"-"`
}

// Session is everything one user has produced so far. It is persisted between requests.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Flags     Flags     `json:"flags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Premises []storybook.Premise `json:"premises,omitempty"`
	Choice   *int                `json:"choice,omitempty"`

	Image     []byte              `json:"image,omitempty"`
	ImageMime string              `json:"image_mime,omitempty"`
	Elements  *storybook.Elements `json:"elements,omitempty"`
	Themes    []string            `json:"themes,omitempty"`
	Theme     string              `json:"theme,omitempty"`
	Questions []string            `json:"questions,omitempty"`
	Answers   []storybook.Answer  `json:"answers,omitempty"`

	Seed *storybook.StorySeed `json:"seed,omitempty"`
	Book *storybook.Book      `json:"book,omitempty"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, State: StateMain, CreatedAt: now, UpdatedAt: now}
}

// Reset discards every artifact and returns to main. ID and CreatedAt survive.
func (s *Session) Reset() {
	*s = Session{ID: s.ID, State: StateMain, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

// clearAnalysis drops everything derived from the uploaded image.
func (s *Session) clearAnalysis() {
	s.Flags.ImageAnalyzed = false
	s.Elements = nil
	s.Flags.ThemesProposed = false
	s.Themes = nil
	s.Theme = ""
	s.clearQuestions()
}

// clearQuestions drops everything derived from the chosen theme.
func (s *Session) clearQuestions() {
	s.Flags.QuestionsProposed = false
	s.Questions = nil
	s.Answers = nil
	s.clearSeed()
}

func (s *Session) clearSeed() {
	s.Seed = nil
	s.Flags.SeedSaved = false
	s.Flags.BookGenerated = false
	s.Book = nil
}

func EncodeSession(s *Session) ([]byte, error) { return json.Marshal(s) }

func DecodeSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
