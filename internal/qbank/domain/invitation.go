package domain

import "time"

// InvitationTTL is how long a freshly minted invitation stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID        string
	Token     string // Opaque single-use token, base64url
	CompanyID string
	CreatedBy string // User ID of the minting admin or evaluator
	Email     string // Invitee email the token was minted for
	Role      Role   // Role to assign on accept; never admin
	ExpiresAt time.Time
	Used      bool
	UsedBy    string // Can be empty string if not yet used
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the invitation can still be redeemed at the given
// instant.
func (i Invitation) Active(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}
