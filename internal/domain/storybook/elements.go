package storybook

import "strings"

// Elements is what the extraction pipeline reads out of an uploaded picture.
type Elements struct {
	Caption string   `json:"caption"`
	Labels  []string `json:"labels"`
	Nouns   []string `json:"nouns"`
}

const questionSeparator = "→"

// Question is one planner question, optionally followed by a deeper follow-up.
type Question struct {
	Raw      string `json:"raw"`
	Main     string `json:"main"`
	FollowUp string `json:"follow_up,omitempty"`
}

func ParseQuestion(raw string) Question {
	q := Question{Raw: raw}
	main, follow, ok := strings.Cut(raw, questionSeparator)
	q.Main = strings.TrimSpace(main)
	if ok {
		q.FollowUp = strings.TrimSpace(follow)
	}
	return q
}

func ParseQuestions(lines []string) []Question {
	out := make([]Question, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, ParseQuestion(l))
	}
	return out
}

// Answer is the user's reply to one Question.
type Answer struct {
	Question string `json:"question"`
	Main     string `json:"main"`
	FollowUp string `json:"follow_up,omitempty"`
}
