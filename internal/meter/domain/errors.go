package domain

import "errors"

var (
	ErrMeterNotFound    = errors.New("meter_not_found")
	ErrAlreadyStarted   = errors.New("meter_already_started")
	ErrInvalidState     = errors.New("meter_invalid_state")
	ErrAlreadyFinalized = errors.New("meter_already_finalized")
	ErrInvalidTip       = errors.New("invalid_tip")
	ErrNotOwner         = errors.New("meter_not_owned_by_driver")
)
