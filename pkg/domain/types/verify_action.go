package types

import "fmt"

// VerifyAction represents a user decision on a speaker identity suggestion
type VerifyAction string

const (
	// VerifyActionAccept assigns the instance to an existing profile
	VerifyActionAccept VerifyAction = "accept"
	// VerifyActionReject marks the instance verified without a profile
	VerifyActionReject VerifyAction = "reject"
	// VerifyActionCreateProfile creates a new profile and assigns the instance
	VerifyActionCreateProfile VerifyAction = "create_profile"
)

// AllVerifyActions returns all valid verify actions
func AllVerifyActions() []VerifyAction {
	return []VerifyAction{
		VerifyActionAccept,
		VerifyActionReject,
		VerifyActionCreateProfile,
	}
}

// IsValid checks if the verify action is valid
func (a VerifyAction) IsValid() bool {
	switch a {
	case VerifyActionAccept, VerifyActionReject, VerifyActionCreateProfile:
		return true
	default:
		return false
	}
}

// String returns the string representation of the verify action
func (a VerifyAction) String() string {
	return string(a)
}

// ParseVerifyAction parses a string into a VerifyAction
func ParseVerifyAction(s string) (VerifyAction, error) {
	action := VerifyAction(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid verify action: %s", s)
	}
	return action, nil
}
