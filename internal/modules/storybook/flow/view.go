package flow

import "github.com/yungbote/ehon-backend/internal/domain/storybook"

type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type PremiseView struct {
	Index   int               `json:"index"`
	Summary string            `json:"summary"`
	Premise storybook.Premise `json:"premise"`
}

// View is what a client renders after an action: the current screen and its artifacts.
type View struct {
	SessionID string      `json:"session_id"`
	State     State       `json:"state"`
	Allowed   []EventType `json:"allowed_events"`
	Notices   []Notice    `json:"notices"`

	Premises  []PremiseView        `json:"premises,omitempty"`
	Choice    *int                 `json:"choice,omitempty"`
	HasImage  bool                 `json:"has_image,omitempty"`
	Elements  *storybook.Elements  `json:"elements,omitempty"`
	Themes    []string             `json:"themes,omitempty"`
	Theme     string               `json:"theme,omitempty"`
	Questions []storybook.Question `json:"questions,omitempty"`
	Answers   []storybook.Answer   `json:"answers,omitempty"`
	Book      *storybook.Book      `json:"book,omitempty"`
}

func (v View) HasError() bool {
	for _, n := range v.Notices {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}

// Render builds the view of s for its current state.
func Render(s *Session, notices ...Notice) View {
	v := View{
		SessionID: s.ID,
		State:     s.State,
		Allowed:   Allowed(s.State),
		Notices:   append([]Notice{}, notices...),
	}
	switch s.State {
	case StateRandomSelect:
		v.Premises = make([]PremiseView, 0, len(s.Premises))
		for i, p := range s.Premises {
			v.Premises = append(v.Premises, PremiseView{Index: i, Summary: p.Summary(), Premise: p})
		}
		v.Choice = s.Choice
	case StateUploadImage:
		v.HasImage = len(s.Image) > 0
	case StateSelectTheme:
		v.Elements = s.Elements
		v.Themes = s.Themes
		v.Theme = s.Theme
	case StateAnswerQuestions:
		v.Theme = s.Theme
		v.Questions = storybook.ParseQuestions(s.Questions)
		v.Answers = s.Answers
	case StateResult:
		v.Book = s.Book
	}
	return v
}
