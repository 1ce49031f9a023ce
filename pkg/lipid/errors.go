package lipid

import (
	"errors"
	"fmt"
)

var (
	// ErrConstraintViolation marks a chemically inconsistent structure.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrUnsupportedLipid marks notation that parses but is not modeled.
	ErrUnsupportedLipid = errors.New("unsupported lipid")
	// ErrIllegalLevel is returned when a lipid is rendered at a level finer
	// than the detail it holds.
	ErrIllegalLevel = errors.New("illegal lipid level")
)

func constraintf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstraintViolation, fmt.Sprintf(format, args...))
}

func unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedLipid, fmt.Sprintf(format, args...))
}

func illegalLevel(have, want Level) error {
	return fmt.Errorf("%w: lipid at %s cannot be rendered at %s", ErrIllegalLevel, have, want)
}
