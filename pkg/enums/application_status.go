package enums

import "fmt"

// ApplicationStatus tracks a farmer application through review.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "PENDING"
	ApplicationStatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusApproved    ApplicationStatus = "APPROVED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusUnderReview,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

// String implements fmt.Stringer.
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApplicationStatus.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApplicationStatus converts raw input into an ApplicationStatus.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", value)
}
