package notifications

import (
	"sort"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// Group is a collapsed view of notifications that share a type and target.
// Only like and like_comment notifications collapse; everything else comes
// through as a group of one.
type Group struct {
	Type   enums.NotificationType `json:"type"`
	Key    string                 `json:"key"`
	Count  int                    `json:"count"`
	Unread int                    `json:"unread"`
	Latest models.Notification    `json:"latest"`
	IDs    []uuid.UUID            `json:"ids"`
}

// Aggregate collapses a page of notifications into display groups. Groupable
// notifications are keyed by target id, falling back to comment id when no
// target is set. Groups come back newest first by their latest notification.
func Aggregate(items []models.Notification) []Group {
	groups := make(map[string]*Group)
	order := make([]string, 0, len(items))

	for _, item := range items {
		key := groupKey(item)
		existing, ok := groups[key]
		if !ok {
			groups[key] = &Group{
				Type:   item.Type,
				Key:    key,
				Count:  1,
				Latest: item,
				IDs:    []uuid.UUID{item.ID},
			}
			if !item.Read {
				groups[key].Unread = 1
			}
			order = append(order, key)
			continue
		}
		existing.Count++
		existing.IDs = append(existing.IDs, item.ID)
		if !item.Read {
			existing.Unread++
		}
		if item.CreatedAt.After(existing.Latest.CreatedAt) {
			existing.Latest = item
		}
	}

	result := make([]Group, 0, len(order))
	for _, key := range order {
		result = append(result, *groups[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Latest.CreatedAt.After(result[j].Latest.CreatedAt)
	})
	return result
}

func groupKey(item models.Notification) string {
	if !item.Type.Groupable() {
		return string(item.Type) + "/" + item.ID.String()
	}
	target := ""
	if item.TargetID != nil && *item.TargetID != "" {
		target = *item.TargetID
	} else if item.CommentID != nil {
		target = *item.CommentID
	}
	return string(item.Type) + "/" + target
}
