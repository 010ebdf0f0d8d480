package enums

import "fmt"

// FriendRequestStatus maps to the friend_request_status enum in Postgres.
// A declined request's identity key is reusable: resending deletes the
// declined row and writes a fresh pending one.
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusDeclined FriendRequestStatus = "declined"
)

var validFriendRequestStatuses = []FriendRequestStatus{
	FriendRequestStatusPending,
	FriendRequestStatusAccepted,
	FriendRequestStatusDeclined,
}

// IsValid reports whether the value is a known FriendRequestStatus.
func (s FriendRequestStatus) IsValid() bool {
	for _, candidate := range validFriendRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFriendRequestStatus converts raw input into a FriendRequestStatus.
func ParseFriendRequestStatus(value string) (FriendRequestStatus, error) {
	for _, candidate := range validFriendRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid friend request status %q", value)
}
