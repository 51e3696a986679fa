package payroll

import "errors"

var (
	ErrInvalidPeriod        = errors.New("invalid payroll period")
	ErrFinalizeInvalidState = errors.New("only draft runs can be finalized")
)
