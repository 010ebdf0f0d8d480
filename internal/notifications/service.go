package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/pagination"
)

// DefaultBroadcastChunkSize bounds how many notifications one broadcast batch
// writes at a time.
const DefaultBroadcastChunkSize = 500

// Service defines notification creation, listing, and read-state operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Notification, error)
	Broadcast(ctx context.Context, params BroadcastParams) (*BroadcastResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
	MarkReadBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, recipientID, notificationID uuid.UUID) error
	DeleteBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type recipientSource interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type service struct {
	repo       Repository
	recipients recipientSource
	logg       *logger.Logger
	chunkSize  int
}

// CreateParams describes a single-recipient notification.
type CreateParams struct {
	RecipientID uuid.UUID
	Type        enums.NotificationType
	Title       string
	Message     string
	TargetID    *string
	TargetType  *string
	CommentID   *string
}

// BroadcastParams describes an admin message fanned out to every active user.
type BroadcastParams struct {
	Title   string
	Message string
}

// BroadcastResult reports how the fanout went. Failed chunks are skipped, not
// retried; Err aggregates their write errors.
type BroadcastResult struct {
	Recipients int
	Written    int
	Chunks     int
	Err        error
}

// ListParams configures pagination for notifications.
type ListParams struct {
	RecipientID uuid.UUID
	Limit       int
	Cursor      string
	UnreadOnly  bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// ServiceParams bundles notifications dependencies.
type ServiceParams struct {
	Repo       Repository
	Recipients recipientSource
	Logger     *logger.Logger
	ChunkSize  int
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultBroadcastChunkSize
	}
	return &service{
		repo:       params.Repo,
		recipients: params.Recipients,
		logg:       params.Logger,
		chunkSize:  chunkSize,
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Notification, error) {
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	title := strings.TrimSpace(params.Title)
	message := strings.TrimSpace(params.Message)
	if title == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Title:       title,
		Message:     message,
		TargetID:    params.TargetID,
		TargetType:  params.TargetType,
		CommentID:   params.CommentID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

// Broadcast writes an admin message to every active user in fixed-size
// chunks. A failed chunk is logged and skipped so the rest of the fanout
// still lands; the combined error is returned for the caller to surface.
func (s *service) Broadcast(ctx context.Context, params BroadcastParams) (*BroadcastResult, error) {
	if s.recipients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipient source required")
	}
	title := strings.TrimSpace(params.Title)
	message := strings.TrimSpace(params.Message)
	if title == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	recipientIDs, err := s.recipients.ListActiveIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list broadcast recipients")
	}

	result := &BroadcastResult{Recipients: len(recipientIDs)}
	var combined error
	for start := 0; start < len(recipientIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(recipientIDs) {
			end = len(recipientIDs)
		}
		chunk := recipientIDs[start:end]
		result.Chunks++

		batch := make([]*models.Notification, 0, len(chunk))
		for _, recipientID := range chunk {
			batch = append(batch, &models.Notification{
				ID:          uuid.New(),
				RecipientID: recipientID,
				Type:        enums.NotificationTypeAdminMessage,
				Title:       title,
				Message:     message,
			})
		}
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"chunk_start": start,
				"chunk_size":  len(chunk),
			}), "broadcast chunk failed")
			combined = multierr.Append(combined, fmt.Errorf("chunk at offset %d: %w", start, err))
			continue
		}
		result.Written += len(chunk)
	}
	result.Err = combined
	return result, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	query := listNotificationsParams{
		RecipientID: params.RecipientID,
		Limit:       params.Limit,
		UnreadOnly:  params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkReadBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	count, err := s.repo.MarkReadBatch(ctx, recipientID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	count, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient and notification ids required")
	}
	found, err := s.repo.Delete(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) DeleteBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	count, err := s.repo.DeleteBatch(ctx, recipientID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notifications")
	}
	return count, nil
}
