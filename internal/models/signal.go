// Package models holds the data types shared by the scoring pipeline stages.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is returned when an analysis request fails validation.
var ErrInvalidRequest = errors.New("invalid analysis request")

// SignalType categorizes a buyer-intent signal
type SignalType string

const (
	SignalLinkedInEngagement SignalType = "linkedin_engagement"
	SignalWebsiteVisit       SignalType = "website_visit"
	SignalContentDownload    SignalType = "content_download"
	SignalEmailInteraction   SignalType = "email_interaction"
	SignalJobChange          SignalType = "job_change"
	SignalWebinarAttendance  SignalType = "webinar_attendance"
	SignalFundingRound       SignalType = "funding_round"
	SignalHiringActivity     SignalType = "hiring_activity"
	SignalReviewSiteActivity SignalType = "review_site_activity"
)

// KnownSignalTypes lists the supported signal categories in a stable order
var KnownSignalTypes = []SignalType{
	SignalLinkedInEngagement,
	SignalWebsiteVisit,
	SignalContentDownload,
	SignalEmailInteraction,
	SignalJobChange,
	SignalWebinarAttendance,
	SignalFundingRound,
	SignalHiringActivity,
	SignalReviewSiteActivity,
}

// IsKnown reports whether the type is one of the supported categories
func (t SignalType) IsKnown() bool {
	for _, known := range KnownSignalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Signal is one recorded buyer-behavior event. Signals are never mutated
// after they are received.
type Signal struct {
	Type        SignalType     `json:"type" yaml:"type" validate:"required"`
	Timestamp   *time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Action      string         `json:"action,omitempty" yaml:"action,omitempty"`
	Content     string         `json:"content,omitempty" yaml:"content,omitempty"`
	Page        string         `json:"page,omitempty" yaml:"page,omitempty"`
	Duration    float64        `json:"duration,omitempty" yaml:"duration,omitempty" validate:"gte=0"` // seconds
	VisitNumber int            `json:"visitNumber,omitempty" yaml:"visitNumber,omitempty" validate:"gte=0"`
	BounceRate  float64        `json:"bounceRate,omitempty" yaml:"bounceRate,omitempty" validate:"gte=0,lte=1"`
	DaysInRole  *int           `json:"daysInRole,omitempty" yaml:"daysInRole,omitempty" validate:"omitempty,gte=0"`
	Role        string         `json:"role,omitempty" yaml:"role,omitempty"`
	Amount      float64        `json:"amount,omitempty" yaml:"amount,omitempty" validate:"gte=0"`
	Count       int            `json:"count,omitempty" yaml:"count,omitempty" validate:"gte=0"`
	Email       string         `json:"email,omitempty" yaml:"email,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasField reports whether a named field carries a value. Names that are not
// signal fields are looked up in Metadata.
func (s Signal) HasField(name string) bool {
	switch strings.ToLower(name) {
	case "timestamp":
		return s.Timestamp != nil
	case "action":
		return s.Action != ""
	case "content":
		return s.Content != ""
	case "page":
		return s.Page != ""
	case "duration":
		return s.Duration > 0
	case "visitnumber":
		return s.VisitNumber > 0
	case "bouncerate":
		return s.BounceRate > 0
	case "daysinrole":
		return s.DaysInRole != nil
	case "role":
		return s.Role != ""
	case "amount":
		return s.Amount > 0
	case "count":
		return s.Count > 0
	case "email":
		return s.Email != ""
	}
	v, ok := s.Metadata[name]
	if !ok || v == nil {
		return false
	}
	if str, isStr := v.(string); isStr {
		return str != ""
	}
	return true
}

// MetadataString returns a metadata value formatted as a string
func (s Signal) MetadataString(key string) (string, bool) {
	v, ok := s.Metadata[key]
	if !ok || v == nil {
		return "", false
	}
	if str, isStr := v.(string); isStr {
		return str, true
	}
	return fmt.Sprintf("%v", v), true
}

// Prospect is the person or account being evaluated
type Prospect struct {
	Company     string `json:"company" yaml:"company" validate:"required"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
	Industry    string `json:"industry,omitempty" yaml:"industry,omitempty"`
	CompanySize string `json:"companySize,omitempty" yaml:"companySize,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

// AnalysisRequest is the input to one pipeline run
type AnalysisRequest struct {
	Signals  []Signal `json:"signals" yaml:"signals" validate:"required,min=1,dive"`
	Prospect Prospect `json:"prospect" yaml:"prospect"`
}

var requestValidator = validator.New()

// Validate checks the request shape. The returned error wraps ErrInvalidRequest.
func (r *AnalysisRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
