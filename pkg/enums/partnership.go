package enums

import "fmt"

// PartnershipStatus mirrors the partnership_status enum in Postgres.
type PartnershipStatus string

const (
	PartnershipStatusPending    PartnershipStatus = "pending"
	PartnershipStatusActive     PartnershipStatus = "active"
	PartnershipStatusTerminated PartnershipStatus = "terminated"
)

var validPartnershipStatuses = []PartnershipStatus{
	PartnershipStatusPending,
	PartnershipStatusActive,
	PartnershipStatusTerminated,
}

// String implements fmt.Stringer.
func (s PartnershipStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PartnershipStatus.
func (s PartnershipStatus) IsValid() bool {
	for _, candidate := range validPartnershipStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePartnershipStatus converts raw input into a PartnershipStatus.
func ParsePartnershipStatus(value string) (PartnershipStatus, error) {
	for _, candidate := range validPartnershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partnership status %q", value)
}

// PartnerRole is the side of a partnership the local store occupies.
type PartnerRole string

const (
	PartnerRoleProducer  PartnerRole = "producer"
	PartnerRoleProcessor PartnerRole = "processor"
)

var validPartnerRoles = []PartnerRole{
	PartnerRoleProducer,
	PartnerRoleProcessor,
}

// String implements fmt.Stringer.
func (r PartnerRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known PartnerRole.
func (r PartnerRole) IsValid() bool {
	for _, candidate := range validPartnerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePartnerRole converts raw input into a PartnerRole.
func ParsePartnerRole(value string) (PartnerRole, error) {
	for _, candidate := range validPartnerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner role %q", value)
}

// Counterpart returns the role occupied by the other side of a partnership.
func (r PartnerRole) Counterpart() PartnerRole {
	if r == PartnerRoleProducer {
		return PartnerRoleProcessor
	}
	return PartnerRoleProducer
}
