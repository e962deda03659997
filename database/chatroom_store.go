package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRoomStore 聊天室文件的存取
type ChatRoomStore struct {
	coll *mongo.Collection
}

func NewChatRoomStore(db *MongoDB) *ChatRoomStore {
	return &ChatRoomStore{coll: db.Collection(chatRoomsCollection)}
}

// Insert 將新的聊天室插入到 MongoDB 並回填 ID
func (s *ChatRoomStore) Insert(ctx context.Context, room *models.ChatRoom) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, room); err != nil {
		return fmt.Errorf("insert chat room: %w", err)
	}
	return nil
}

func (s *ChatRoomStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var room models.ChatRoom
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat room %s: %w", id.Hex(), err)
	}
	return &room, nil
}

// List 依條件查詢啟用中的聊天室，最新建立的在前
func (s *ChatRoomStore) List(ctx context.Context, f models.RoomFilter) ([]models.ChatRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, RoomListFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list chat rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []models.ChatRoom{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("decode chat rooms: %w", err)
	}
	return rooms, nil
}

// ReplaceIfVersion 只有在版本號仍為 expected 時才覆寫文件，並把版本號加一。
// 沒有符合的文件時回傳 ErrVersionConflict (或 ErrNotFound，若文件已不存在)。
func (s *ChatRoomStore) ReplaceIfVersion(ctx context.Context, room *models.ChatRoom, expected int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	room.Version = expected + 1
	res, err := s.coll.ReplaceOne(ctx, VersionFilter(room.ID, expected), room)
	if err != nil {
		room.Version = expected
		return fmt.Errorf("save chat room %s: %w", room.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		room.Version = expected
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": room.ID})
		if err != nil {
			return fmt.Errorf("check chat room %s: %w", room.ID.Hex(), err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// VersionFilter matches room id at version expected. Documents written
// before versioning have no version field and count as version 0.
func VersionFilter(id primitive.ObjectID, expected int64) bson.M {
	if expected == 0 {
		return bson.M{"_id": id, "$or": bson.A{
			bson.M{"version": int64(0)},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": id, "version": expected}
}

func (s *ChatRoomStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete chat room %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateEnded 將旅行結束日期已過的聊天室設為停用
func (s *ChatRoomStore) DeactivateEnded(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.coll.UpdateMany(ctx,
		bson.M{"isActive": true, "travelDates.endDate": bson.M{"$lt": now}},
		bson.M{
			"$set": bson.M{"isActive": false, "updatedAt": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate ended chat rooms: %w", err)
	}
	return res.ModifiedCount, nil
}

// RoomListFilter builds the query for GET /chatrooms: active rooms only,
// destination as case-insensitive substring, continent/category exact, and
// query against name, description or any tag.
func RoomListFilter(f models.RoomFilter) bson.M {
	filter := bson.M{"isActive": true}

	if f.Destination != "" {
		filter["destination"] = containsIgnoreCase(f.Destination)
	}
	if f.Continent != "" {
		filter["continent"] = f.Continent
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		q := containsIgnoreCase(f.Query)
		filter["$or"] = bson.A{
			bson.M{"name": q},
			bson.M{"description": q},
			bson.M{"tags": bson.M{"$in": bson.A{q}}},
		}
	}
	return filter
}

func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
