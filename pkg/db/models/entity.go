package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
)

// Entity is a committed reference record. The same shape backs both the idols
// and groups tables; repositories select the table by SubmissionKind, so the
// struct carries no TableName of its own.
//
// The slug is the stable identifier derived from the display name at approval
// time; Profile holds every other editable field keyed by field name.
type Entity struct {
	Slug      string            `gorm:"type:text;primaryKey"`
	Name      string            `gorm:"type:text;not null"`
	Profile   dbtypes.StringMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedBy *uuid.UUID        `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// FieldValue looks up an editable field on the record. The display name is
// addressable as the "name" field; everything else lives in Profile.
func (e Entity) FieldValue(field string) (string, bool) {
	if field == "name" {
		return e.Name, true
	}
	value, ok := e.Profile[field]
	return value, ok
}
