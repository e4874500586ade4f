package models

import (
	"time"
)

// Invitation status values. Expiry is computed against expires_at on
// every read; no background sweep. A stale pending row is only flipped
// to expired when a new invitation for the same address needs its slot
// in the pending unique index.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

// Invitation grants org membership to an email address via a single-use
// token. Only the SHA-256 digest of the token is stored; the plaintext
// leaves the service exactly once, in the create response and the mail.
type Invitation struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	OrgID      uint          `gorm:"index;not null" json:"org_id"`
	Org        *Organization `gorm:"foreignKey:OrgID" json:"org,omitempty"`
	Email      string        `gorm:"size:255;not null;index" json:"email"` // case-normalized
	Role       string        `gorm:"size:50;not null;default:member" json:"role"`
	TokenHash  string        `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status     string        `gorm:"size:20;not null;default:pending;index" json:"status"`
	ExpiresAt  time.Time     `gorm:"not null" json:"expires_at"`
	CreatedBy  uint          `json:"created_by"`
	AcceptedAt *time.Time    `json:"accepted_at"`
	AcceptedBy *uint         `json:"accepted_by"` // informational back-reference only
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// IsExpired reports whether the invitation is past its TTL at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Usable reports whether the invitation can still be viewed or
// accepted: pending and not expired.
func (i *Invitation) Usable(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}

// DisplayStatus returns the status shown to admins: pending rows past
// their TTL read as expired without any row mutation.
func (i *Invitation) DisplayStatus(now time.Time) string {
	if i.Status == InvitationPending && i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}
