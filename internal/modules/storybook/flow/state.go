package flow

import (
	"errors"
	"fmt"
)

type State string

const (
	StateMain            State = "main"
	StateRandomSelect    State = "random-select"
	StateCustomIntro     State = "custom-intro"
	StateUploadImage     State = "upload-image"
	StateSelectTheme     State = "select-theme"
	StateAnswerQuestions State = "answer-questions"
	StateResult          State = "result"
)

type EventType string

const (
	EventRandom EventType = "random"
	EventCustom EventType = "custom"
	EventLookup EventType = "lookup"
	EventStart  EventType = "start"
	EventUpload EventType = "upload"
	EventSelect EventType = "select"
	EventAnswer EventType = "answer"
	EventNext   EventType = "next"
	EventBack   EventType = "back"
	EventHome   EventType = "home"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("session not found")
)

type transitionKey struct {
	from  State
	event EventType
}

// transitions lists every allowed (state, event) pair and its target on success. Actions that
// fail keep the session in its current state.
var transitions = map[transitionKey]State{
	{StateMain, EventRandom}: StateRandomSelect,
	{StateMain, EventCustom}: StateCustomIntro,
	{StateMain, EventLookup}: StateResult,

	{StateRandomSelect, EventSelect}: StateRandomSelect,
	{StateRandomSelect, EventNext}:   StateResult,
	{StateRandomSelect, EventBack}:   StateMain,

	{StateCustomIntro, EventStart}: StateUploadImage,
	{StateCustomIntro, EventBack}:  StateMain,

	{StateUploadImage, EventUpload}: StateUploadImage,
	{StateUploadImage, EventNext}:   StateSelectTheme,
	{StateUploadImage, EventBack}:   StateCustomIntro,

	{StateSelectTheme, EventSelect}: StateSelectTheme,
	{StateSelectTheme, EventNext}:   StateAnswerQuestions,
	{StateSelectTheme, EventBack}:   StateUploadImage,

	{StateAnswerQuestions, EventAnswer}: StateAnswerQuestions,
	{StateAnswerQuestions, EventNext}:   StateResult,
	{StateAnswerQuestions, EventBack}:   StateSelectTheme,

	{StateResult, EventHome}: StateMain,
}

// Target reports where ev leads from s, or ErrInvalidTransition.
func Target(s State, ev EventType) (State, error) {
	to, ok := transitions[transitionKey{s, ev}]
	if !ok {
		return s, fmt.Errorf("%w: %q in state %q", ErrInvalidTransition, ev, s)
	}
	return to, nil
}

// Allowed lists the events accepted in s, in a stable order.
func Allowed(s State) []EventType {
	var out []EventType
	for _, ev := range []EventType{
		EventRandom, EventCustom, EventLookup, EventStart, EventUpload,
		EventSelect, EventAnswer, EventNext, EventBack, EventHome,
	} {
		if _, ok := transitions[transitionKey{s, ev}]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// KnownEvent reports whether t names an event of the flow.
func KnownEvent(t EventType) bool {
	switch t {
	case EventRandom, EventCustom, EventLookup, EventStart, EventUpload,
		EventSelect, EventAnswer, EventNext, EventBack, EventHome:
		return true
	}
	return false
}
