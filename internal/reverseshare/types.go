package reverseshare

import (
	"errors"
	"time"
)

// ReverseShare is an invitation token that lets an external party create a
// share under the inviter's policy: the invitation's expiration overrides the
// share's own, and each completed share consumes one remaining use.
type ReverseShare struct {
	Token                 string     `json:"token"`
	ShareExpiration       *time.Time `json:"shareExpiration,omitempty"` // nil = never
	MaxShareSize          int64      `json:"maxShareSize,omitempty"`    // bytes, 0 = unlimited
	RemainingUses         int64      `json:"remainingUses"`
	SendEmailNotification bool       `json:"sendEmailNotification"`
	CreatorID             string     `json:"creatorId"`
	CreatorEmail          string     `json:"creatorEmail,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`

	// IDs of shares created through this invitation
	ShareIDs []string `json:"shareIds,omitempty"`
}

// CreateRequest carries the inviter-supplied fields for a new invitation
type CreateRequest struct {
	ShareExpiration       string `json:"shareExpiration"` // "<n>-<unit>" or "never"
	MaxShareSize          int64  `json:"maxShareSize"`
	MaxUseCount           int64  `json:"maxUseCount"`
	SendEmailNotification bool   `json:"sendEmailNotification"`
}

// Common errors
var (
	ErrNotFound  = errors.New("reverse share not found")
	ErrExhausted = errors.New("reverse share has no remaining uses")
)
