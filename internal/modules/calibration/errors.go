package calibration

import "errors"

var (
	ErrUnknownStep          = errors.New("calibration: unknown step")
	ErrUnknownField         = errors.New("calibration: unknown field")
	ErrUnknownOption        = errors.New("calibration: unknown option")
	ErrInvalidValue         = errors.New("calibration: invalid value")
	ErrEmptyAnswer          = errors.New("calibration: empty answer")
	ErrStaleAnswer          = errors.New("calibration: answer targets a different step")
	ErrCustomSelected       = errors.New("calibration: custom option must go through the escape handler")
	ErrEscapePending        = errors.New("calibration: a custom answer is already pending")
	ErrBusy                 = errors.New("calibration: a submission is already in flight")
	ErrAwaitingConfirmation = errors.New("calibration: wizard is waiting for confirmation")
	ErrNotAtTerminal        = errors.New("calibration: confirmation is only possible at the final step")
	ErrAlreadyConfirmed     = errors.New("calibration: wizard already confirmed")
	ErrIncomplete           = errors.New("calibration: preferences are incomplete")
)
