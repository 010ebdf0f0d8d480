package enums

import "fmt"

// SubmissionKind identifies which pending collection a submission belongs to.
// The set is closed: moderation only ever deals with idols and groups.
type SubmissionKind string

const (
	SubmissionKindIdol  SubmissionKind = "idol"
	SubmissionKindGroup SubmissionKind = "group"
)

var validSubmissionKinds = []SubmissionKind{
	SubmissionKindIdol,
	SubmissionKindGroup,
}

// String implements fmt.Stringer.
func (k SubmissionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SubmissionKind.
func (k SubmissionKind) IsValid() bool {
	for _, candidate := range validSubmissionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// PendingCollection returns the table holding pending submissions of this kind.
func (k SubmissionKind) PendingCollection() string {
	if k == SubmissionKindGroup {
		return "pending_groups"
	}
	return "pending_idols"
}

// CommittedCollection returns the table holding committed records of this kind.
func (k SubmissionKind) CommittedCollection() string {
	if k == SubmissionKindGroup {
		return "groups"
	}
	return "idols"
}

// ParseSubmissionKind converts raw input into a SubmissionKind.
func ParseSubmissionKind(value string) (SubmissionKind, error) {
	for _, candidate := range validSubmissionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission kind %q", value)
}
