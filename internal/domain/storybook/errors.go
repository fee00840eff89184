package storybook

import "errors"

var (
	ErrBlankBookID     = errors.New("book id is blank")
	ErrMalformedBookID = errors.New("book id is malformed")
	ErrBookNotFound    = errors.New("book not found")
	ErrNoPremises      = errors.New("no premises available")
)
