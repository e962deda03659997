package database

import (
	"context"
	"errors"
	"fmt"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChatStore 一對一與群組聊天文件的存取
type ChatStore struct {
	coll *mongo.Collection
}

func NewChatStore(db *MongoDB) *ChatStore {
	return &ChatStore{coll: db.Collection(chatsCollection)}
}

// FindDirect 以成員集合查找一對一聊天，與順序無關
func (s *ChatStore) FindDirect(ctx context.Context, members []primitive.ObjectID) (*models.Chat, error) {
	return s.findOne(ctx, DirectChatFilter(members))
}

// FindGroupByName 以名稱查找群組聊天，成員不列入比對
func (s *ChatStore) FindGroupByName(ctx context.Context, name string) (*models.Chat, error) {
	return s.findOne(ctx, bson.M{"isGroupChat": true, "name": name})
}

func (s *ChatStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *ChatStore) findOne(ctx context.Context, filter bson.M) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var chat models.Chat
	err := s.coll.FindOne(ctx, filter).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &chat, nil
}

// FindByIDs 依 ID 取得多個聊天，不保證順序
func (s *ChatStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Chat, error) {
	if len(ids) == 0 {
		return []models.Chat{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

func (s *ChatStore) Insert(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

// DirectChatFilter matches a direct chat whose member set is exactly members.
func DirectChatFilter(members []primitive.ObjectID) bson.M {
	return bson.M{
		"isGroupChat": false,
		"members": bson.M{
			"$all":  members,
			"$size": len(members),
		},
	}
}
