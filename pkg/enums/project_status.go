package enums

import "fmt"

// ProjectStatus tracks a farming project through its season.
type ProjectStatus string

const (
	ProjectStatusPersiapan  ProjectStatus = "PERSIAPAN"
	ProjectStatusPenanaman  ProjectStatus = "PENANAMAN"
	ProjectStatusPerawatan  ProjectStatus = "PERAWATAN"
	ProjectStatusPanen      ProjectStatus = "PANEN"
	ProjectStatusSelesai    ProjectStatus = "SELESAI"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusPersiapan,
	ProjectStatusPenanaman,
	ProjectStatusPerawatan,
	ProjectStatusPanen,
	ProjectStatusSelesai,
}

// ActiveProjectStatuses are the statuses counted as a running season.
var ActiveProjectStatuses = []ProjectStatus{
	ProjectStatusPenanaman,
	ProjectStatusPerawatan,
	ProjectStatusPanen,
}

// String implements fmt.Stringer.
func (s ProjectStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProjectStatus.
func (s ProjectStatus) IsValid() bool {
	for _, candidate := range validProjectStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProjectStatus converts raw input into a ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, error) {
	for _, candidate := range validProjectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project status %q", value)
}
