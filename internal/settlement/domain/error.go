package domain

import "errors"

var (
	ErrFarmerNotFound  = errors.New("farmer_not_found")
	ErrUnknownRateType = errors.New("unknown_rate_type")
	ErrInvalidPeriod   = errors.New("invalid_period")
)
