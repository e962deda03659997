package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection        = "users"
	chatsCollection        = "chats"
	chatRoomsCollection    = "chatrooms"
	destinationsCollection = "destinations"

	// 單次資料庫操作的最長時間
	opTimeout = 5 * time.Second
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("duplicate document")
	ErrVersionConflict = errors.New("document was modified concurrently")
)

// MongoDB 持有連線與資料庫控制代碼，整個程序共用一個
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ConnectMongoDB 建立並初始化 MongoDB 連線
func ConnectMongoDB(ctx context.Context, uri, name string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	return &MongoDB{Client: client, Database: client.Database(name)}, nil
}

// EnsureIndexes 建立查詢與唯一性所需的索引
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		chatsCollection: {
			{Keys: bson.D{{Key: "isGroupChat", Value: 1}, {Key: "members", Value: 1}}},
			{Keys: bson.D{{Key: "isGroupChat", Value: 1}, {Key: "name", Value: 1}}},
		},
		chatRoomsCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		destinationsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := m.Database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}
	return nil
}

// Collection 獲取指定資料庫的集合
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// Ping reports whether the primary is reachable.
func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return m.Client.Ping(ctx, readpref.Primary())
}

// Disconnect 關閉 MongoDB 連線
func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
