package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore 使用者文件的存取
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *MongoDB) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// Insert 新增使用者；email 重複時回傳 ErrDuplicate
func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Chats == nil {
		user.Chats = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// FindByIDs 依 ID 取得多位使用者，不保證順序
func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List 取得所有使用者 (不含密碼)
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0})
	return s.find(ctx, bson.M{}, opts)
}

func (s *UserStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if opts == nil {
		opts = options.Find().SetProjection(bson.M{"password": 0})
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// AddChat 把聊天 ID 推入每位成員的 chats 陣列
func (s *UserStore) AddChat(ctx context.Context, userIDs []primitive.ObjectID, chatID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$push": bson.M{"chats": chatID}},
	)
	if err != nil {
		return fmt.Errorf("add chat %s to users: %w", chatID.Hex(), err)
	}
	return nil
}

// UpdateProfile 更新個人資料欄位並回傳更新後的文件
func (s *UserStore) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := ProfileUpdateFields(upd)
	set["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", email, err)
	}
	return &user, nil
}

// ProfileUpdateFields returns the $set document for the non-nil fields.
func ProfileUpdateFields(upd models.ProfileUpdate) bson.M {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ProfileImage != nil {
		set["profileImage"] = *upd.ProfileImage
	}
	if upd.TravelCity != nil {
		set["travelCity"] = *upd.TravelCity
	}
	if upd.TravelCountry != nil {
		set["travelCountry"] = *upd.TravelCountry
	}
	return set
}
