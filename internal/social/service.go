package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/internal/notifications"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
)

const (
	// DefaultSearchLimit bounds username autocomplete results.
	DefaultSearchLimit = 8
	// MinSearchLength is the shortest prefix the search will run for.
	MinSearchLength = 2

	defaultIncomingLimit = 50
)

// UserSummary is the slim shape returned by username search.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

// Service runs the friend request state machine and the friendship edge
// protocol. Each side of a friendship owns its own edge row: the accepter's
// writes are required, the requester's side is written best-effort and a
// failure there leaves a one-sided edge the reconciler tolerates.
type Service interface {
	SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error)
	Accept(ctx context.Context, selfID, fromID uuid.UUID) error
	Decline(ctx context.Context, selfID, fromID uuid.UUID) error
	RemoveFriend(ctx context.Context, selfID, otherID uuid.UUID) error
	ListFriends(ctx context.Context, ownerID uuid.UUID) ([]models.FriendshipEdge, error)
	ListIncoming(ctx context.Context, userID uuid.UUID, limit int) ([]models.FriendRequest, error)
	PendingCount(ctx context.Context, userID uuid.UUID) (int64, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]UserSummary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]models.User, error)
}

type notifier interface {
	Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error)
}

type service struct {
	db       txRunner
	repo     Repository
	users    userDirectory
	notifier notifier
	logg     *logger.Logger
}

// ServiceParams bundles social graph dependencies.
type ServiceParams struct {
	DB       txRunner
	Repo     Repository
	Users    userDirectory
	Notifier notifier
	Logger   *logger.Logger
}

// NewService constructs the social graph service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("social repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		users:    params.Users,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// SendRequest creates a pending request for the ordered pair (from, to). The
// pair key makes duplicates impossible by construction: a second send while
// one is pending finds the existing row instead of creating another.
func (s *service) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
	if fromID == uuid.Nil || toID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both users are required")
	}
	if fromID == toID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot send a friend request to yourself")
	}

	sender, err := s.lookupUser(ctx, fromID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.lookupUser(ctx, toID)
	if err != nil {
		return nil, err
	}

	pairKey := models.FriendRequestKey(fromID, toID)
	existing, err := s.repo.GetRequest(ctx, pairKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load friend request")
	}
	if existing != nil {
		switch existing.Status {
		case enums.FriendRequestStatusPending:
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "friend request already pending")
		case enums.FriendRequestStatusAccepted:
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you are already friends")
		case enums.FriendRequestStatusDeclined:
			// Declined rows free their key on resend.
			if err := s.repo.DeleteRequest(ctx, pairKey); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear declined request")
			}
		}
	}

	request := &models.FriendRequest{
		PairKey:  pairKey,
		FromUID:  fromID,
		FromName: sender.DisplayName,
		ToUID:    toID,
		ToName:   recipient.DisplayName,
		Status:   enums.FriendRequestStatusPending,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create friend request")
	}
	return request, nil
}

// Accept answers a pending request addressed to selfID. The accepter's own
// writes (status flip plus their edge row) are transactional and must
// succeed. The mirrored edge and both friend counters are written afterwards
// best-effort: the accepter cannot be assumed writable on the requester's
// side, so those failures are logged and swallowed. A one-sided edge is the
// documented consequence.
func (s *service) Accept(ctx context.Context, selfID, fromID uuid.UUID) error {
	request, err := s.loadPendingRequest(ctx, selfID, fromID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.MarkResponded(ctx, request.PairKey, enums.FriendRequestStatusAccepted, now); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "friend request already answered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accept friend request")
		}
		if err := repo.CreateEdge(ctx, &models.FriendshipEdge{
			OwnerID:    selfID,
			FriendID:   fromID,
			FriendName: request.FromName,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record friendship")
		}
		return nil
	})
	if err != nil {
		return err
	}

	targetID := selfID.String()
	if _, err := s.notifier.Create(ctx, notifications.CreateParams{
		RecipientID: fromID,
		Type:        enums.NotificationTypeFriendAccepted,
		Title:       "Friend request accepted",
		Message:     fmt.Sprintf("%s accepted your friend request", request.ToName),
		TargetID:    &targetID,
	}); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("friend_accepted notification failed for %s: %v", fromID, err))
	}

	if err := s.repo.CreateEdge(ctx, &models.FriendshipEdge{
		OwnerID:    fromID,
		FriendID:   selfID,
		FriendName: request.ToName,
	}); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("mirrored friendship edge %s -> %s failed: %v", fromID, selfID, err))
	}
	if err := s.repo.AdjustFriendCount(ctx, selfID, 1); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("friend count increment failed for %s: %v", selfID, err))
	}
	if err := s.repo.AdjustFriendCount(ctx, fromID, 1); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("friend count increment failed for %s: %v", fromID, err))
	}
	return nil
}

// Decline stamps the request declined. No edges are written; the pair key
// stays occupied until the requester resends.
func (s *service) Decline(ctx context.Context, selfID, fromID uuid.UUID) error {
	request, err := s.loadPendingRequest(ctx, selfID, fromID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkResponded(ctx, request.PairKey, enums.FriendRequestStatusDeclined, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeConflict, "friend request already answered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decline friend request")
	}
	return nil
}

// RemoveFriend deletes the caller's own edge and decrements their counter;
// that half must succeed. The counterparty's edge and counter follow
// best-effort.
func (s *service) RemoveFriend(ctx context.Context, selfID, otherID uuid.UUID) error {
	exists, err := s.repo.EdgeExists(ctx, selfID, otherID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check friendship")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "you are not friends with this user")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteEdge(ctx, selfID, otherID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove friendship")
		}
		if err := repo.AdjustFriendCount(ctx, selfID, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement friend count")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.repo.DeleteEdge(ctx, otherID, selfID); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("mirrored friendship removal %s -> %s failed: %v", otherID, selfID, err))
	} else if err := s.repo.AdjustFriendCount(ctx, otherID, -1); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("friend count decrement failed for %s: %v", otherID, err))
	}
	return nil
}

func (s *service) ListFriends(ctx context.Context, ownerID uuid.UUID) ([]models.FriendshipEdge, error) {
	edges, err := s.repo.ListEdges(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list friends")
	}
	return edges, nil
}

func (s *service) ListIncoming(ctx context.Context, userID uuid.UUID, limit int) ([]models.FriendRequest, error) {
	if limit <= 0 || limit > defaultIncomingLimit {
		limit = defaultIncomingLimit
	}
	requests, err := s.repo.ListIncoming(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list incoming requests")
	}
	return requests, nil
}

func (s *service) PendingCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountPendingIncoming(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending requests")
	}
	return count, nil
}

// SearchUsers runs prefix autocomplete over the username index. Queries
// shorter than two characters are rejected to bound read volume.
func (s *service) SearchUsers(ctx context.Context, query string, limit int) ([]UserSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < MinSearchLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query must be at least 2 characters")
	}
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	matches, err := s.users.SearchByUsernamePrefix(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search usernames")
	}
	summaries := make([]UserSummary, 0, len(matches))
	for _, user := range matches {
		if !user.IsActive {
			continue
		}
		summaries = append(summaries, UserSummary{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		})
	}
	return summaries, nil
}

func (s *service) lookupUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *service) loadPendingRequest(ctx context.Context, selfID, fromID uuid.UUID) (*models.FriendRequest, error) {
	pairKey := models.FriendRequestKey(fromID, selfID)
	request, err := s.repo.GetRequest(ctx, pairKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "friend request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load friend request")
	}
	if request.ToUID != selfID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this request is not addressed to you")
	}
	if request.Status != enums.FriendRequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "friend request already answered")
	}
	return request, nil
}
