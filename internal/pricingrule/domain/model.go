package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type TargetType string

const (
	TargetGlobal   TargetType = "GLOBAL"
	TargetBrand    TargetType = "BRAND"
	TargetCategory TargetType = "CATEGORY"
)

type Action string

const (
	// ActionSetMargin replaces the target margin with Value.
	ActionSetMargin Action = "SET_MARGIN"
	// ActionMultiplier scales the target margin by Value.
	ActionMultiplier Action = "MULTIPLIER"
)

type Recurrence string

const (
	RecurrenceNone   Recurrence = "NONE"
	RecurrenceAnnual Recurrence = "ANNUAL"
)

// Schedule limits when a rule applies. With ANNUAL recurrence only the
// months of StartDate and EndDate matter, so a November to January rule runs
// every year across the year end.
type Schedule struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Recurrence Recurrence `json:"recurrence" gorm:"type:text;not null;default:'NONE'"`
}

func (s Schedule) ActiveAt(t time.Time) bool {
	if s.Recurrence == RecurrenceAnnual && s.StartDate != nil && s.EndDate != nil {
		start, end, m := s.StartDate.Month(), s.EndDate.Month(), t.Month()
		if start <= end {
			return m >= start && m <= end
		}
		return m >= start || m <= end
	}
	if s.StartDate != nil && t.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && t.After(*s.EndDate) {
		return false
	}
	return true
}

// PricingRule seeds margins for the products it targets. Rules are never
// merged: the highest priority match wins.
type PricingRule struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	TargetType  TargetType   `json:"target_type" gorm:"type:text;not null"`
	TargetValue string       `json:"target_value" gorm:"type:text"`
	Action      Action       `json:"action" gorm:"type:text;not null"`
	Value       float64      `json:"value" gorm:"not null"`
	Priority    int          `json:"priority" gorm:"not null;default:0;index"`
	IsActive    bool         `json:"is_active" gorm:"not null"`
	Schedule    Schedule     `json:"schedule" gorm:"embedded;embeddedPrefix:schedule_"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (PricingRule) TableName() string { return "pricing_rules" }

// ProductTarget identifies the product a rule is matched against.
type ProductTarget struct {
	Brand      string `json:"brand"`
	CategoryID string `json:"category_id"`
}

// Matches reports whether the rule's scope covers the product.
func (r PricingRule) Matches(p ProductTarget) bool {
	switch r.TargetType {
	case TargetGlobal:
		return true
	case TargetBrand:
		return p.Brand != "" && strings.EqualFold(strings.TrimSpace(r.TargetValue), strings.TrimSpace(p.Brand))
	case TargetCategory:
		return p.CategoryID != "" && r.TargetValue == p.CategoryID
	default:
		return false
	}
}

// AppliesTo reports whether the rule is active, in scope and scheduled at t.
func (r PricingRule) AppliesTo(p ProductTarget, at time.Time) bool {
	return r.IsActive && r.Matches(p) && r.Schedule.ActiveAt(at)
}
