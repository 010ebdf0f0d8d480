package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeMention        NotificationType = "mention"
	NotificationTypeLike           NotificationType = "like"
	NotificationTypeLikeComment    NotificationType = "like_comment"
	NotificationTypeFriendAccepted NotificationType = "friend_accepted"
	NotificationTypeSystem         NotificationType = "system"
	NotificationTypeAdminMessage   NotificationType = "admin_message"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeMention,
	NotificationTypeLike,
	NotificationTypeLikeComment,
	NotificationTypeFriendAccepted,
	NotificationTypeSystem,
	NotificationTypeAdminMessage,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// Groupable reports whether notifications of this type collapse into
// aggregator groups keyed by target.
func (n NotificationType) Groupable() bool {
	return n == NotificationTypeLike || n == NotificationTypeLikeComment
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
