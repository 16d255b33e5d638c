package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrNoText            = errors.New("no extracted text in session")
	ErrNoBundle          = errors.New("no bundle in session")
)

func invalidTransition(op string, from Stage) error {
	return fmt.Errorf("%s from stage %d (%s): %w", op, from, from, ErrInvalidTransition)
}
