// Package services holds the use cases behind the HTTP handlers. Storage is
// reached only through the repository interfaces below, which the database
// stores satisfy and which are mocked in tests.
package services

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks travelmate/backend/services ChatRoomRepository,ChatRepository,UserRepository,DestinationRepository

import (
	"context"
	"time"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatRoomRepository interface {
	Insert(ctx context.Context, room *models.ChatRoom) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error)
	List(ctx context.Context, f models.RoomFilter) ([]models.ChatRoom, error)
	ReplaceIfVersion(ctx context.Context, room *models.ChatRoom, expected int64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeactivateEnded(ctx context.Context, now time.Time) (int64, error)
}

type ChatRepository interface {
	FindDirect(ctx context.Context, members []primitive.ObjectID) (*models.Chat, error)
	FindGroupByName(ctx context.Context, name string) (*models.Chat, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Chat, error)
	Insert(ctx context.Context, chat *models.Chat) error
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	AddChat(ctx context.Context, userIDs []primitive.ObjectID, chatID primitive.ObjectID) error
	UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*models.User, error)
}

type DestinationRepository interface {
	Insert(ctx context.Context, d *models.Destination) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Destination, error)
	List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
