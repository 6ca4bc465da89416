package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome values recorded for each gated request.
const (
	OutcomeAllowed     = "allowed"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadOrigin   = "bad_origin"
	OutcomeRedirected  = "redirected"
	OutcomeForbidden   = "forbidden"
	OutcomeError       = "error"
)

// Represents one pass of a request through the gate pipeline
type GateDecision struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Timestamp      time.Time  `gorm:"index" json:"timestamp"`
	ClientID       string     `gorm:"index" json:"client_id"`
	UserID         *uuid.UUID `gorm:"index" json:"user_id,omitempty"`
	Method         string     `json:"method"`
	Path           string     `gorm:"index" json:"path"`
	Outcome        string     `gorm:"index" json:"outcome"`
	StatusCode     int        `gorm:"index" json:"status_code"`
	ResponseTimeMs int        `json:"response_time_ms"`
	UserAgent      string     `json:"user_agent"`
}

func (GateDecision) TableName() string {
	return "gate_decisions"
}
