package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelmate/backend/chatroom"
	"travelmate/backend/database"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/validators"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultUpdateAttempts bounds the read-apply-write loop of Update.
const DefaultUpdateAttempts = 5

type ChatRoomService struct {
	rooms    ChatRoomRepository
	log      *logger.Logger
	attempts int
}

func NewChatRoomService(rooms ChatRoomRepository, log *logger.Logger) *ChatRoomService {
	return &ChatRoomService{rooms: rooms, log: log, attempts: DefaultUpdateAttempts}
}

// Create validates req and stores a new room with the creator as its only
// member.
func (s *ChatRoomService) Create(ctx context.Context, req models.CreateChatRoomRequest) (*models.ChatRoom, error) {
	// 先去除空白再驗證，只有空白的欄位視為未填
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Destination = strings.TrimSpace(req.Destination)
	req.Creator = strings.TrimSpace(req.Creator)
	req.CreatorName = strings.TrimSpace(req.CreatorName)
	if err := validators.Struct(req); err != nil {
		var verrs validators.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				if e.Tag == "required" {
					return nil, ErrMissingFields
				}
			}
		}
		return nil, err
	}

	room := chatroom.New(req)
	if err := s.rooms.Insert(ctx, room); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).LogRoomEvent(room.ID.Hex(), "created", map[string]interface{}{
		"creator":     room.Creator,
		"destination": room.Destination,
	})
	return room, nil
}

func (s *ChatRoomService) List(ctx context.Context, f models.RoomFilter) ([]models.ChatRoom, error) {
	return s.rooms.List(ctx, f)
}

func (s *ChatRoomService) Get(ctx context.Context, id string) (*models.ChatRoom, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	room, err := s.rooms.FindByID(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// Update applies one action to the room. The transition runs on a copy of
// the stored document and is written back only if nobody else saved the room
// in between; otherwise the document is re-read and the action re-applied.
func (s *ChatRoomService) Update(ctx context.Context, id string, req models.UpdateChatRoomRequest) (*models.ChatRoom, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	log := s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"room_id": id,
		"action":  string(req.Action),
	})

	for attempt := 1; attempt <= s.attempts; attempt++ {
		current, err := s.rooms.FindByID(ctx, oid)
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := chatroom.Apply(next, req); err != nil {
			return nil, err
		}

		err = s.rooms.ReplaceIfVersion(ctx, next, current.Version)
		switch {
		case err == nil:
			log.LogRoomEvent(id, string(req.Action), map[string]interface{}{
				"user":    req.UserEmail,
				"version": next.Version,
			})
			return next, nil
		case errors.Is(err, database.ErrVersionConflict):
			log.Debugf("Chat room changed during update, retrying (attempt %d/%d)", attempt, s.attempts)
			continue
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrRoomNotFound
		default:
			return nil, err
		}
	}

	log.Warn("Giving up on chat room update after repeated version conflicts")
	return nil, ErrConflict
}

// Delete removes the room if requester is its creator.
func (s *ChatRoomService) Delete(ctx context.Context, id, requester string) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := chatroom.CanDelete(room, requester); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	s.log.WithContext(ctx).LogRoomEvent(id, "deleted", map[string]interface{}{"user": requester})
	return nil
}

// ArchiveEnded deactivates rooms whose trip is over.
func (s *ChatRoomService) ArchiveEnded(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.rooms.DeactivateEnded(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("archive ended chat rooms: %w", err)
	}
	return n, nil
}
