package domain

import "errors"

var (
	ErrInvalidRule       = errors.New("invalid_pricing_rule")
	ErrInvalidTargetType = errors.New("invalid_target_type")
	ErrInvalidAction     = errors.New("invalid_rule_action")
	ErrInvalidSchedule   = errors.New("invalid_rule_schedule")
	ErrRuleNotFound      = errors.New("pricing_rule_not_found")
)
