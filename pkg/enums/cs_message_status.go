package enums

import "fmt"

// CsMessageStatus tracks a customer-service message through handling.
type CsMessageStatus string

const (
	CsMessageStatusUnread  CsMessageStatus = "UNREAD"
	CsMessageStatusRead    CsMessageStatus = "READ"
	CsMessageStatusReplied CsMessageStatus = "REPLIED"
)

var validCsMessageStatuses = []CsMessageStatus{
	CsMessageStatusUnread,
	CsMessageStatusRead,
	CsMessageStatusReplied,
}

// String implements fmt.Stringer.
func (s CsMessageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CsMessageStatus.
func (s CsMessageStatus) IsValid() bool {
	for _, candidate := range validCsMessageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCsMessageStatus converts raw input into a CsMessageStatus.
func ParseCsMessageStatus(value string) (CsMessageStatus, error) {
	for _, candidate := range validCsMessageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cs message status %q", value)
}
