package services_test

import (
	"context"
	"sync"
	"time"

	"travelmate/backend/database"
	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memRooms is an in-memory ChatRoomRepository with the same version check
// as the Mongo store.
type memRooms struct {
	mu    sync.Mutex
	rooms map[primitive.ObjectID]*models.ChatRoom
}

func newMemRooms() *memRooms {
	return &memRooms{rooms: map[primitive.ObjectID]*models.ChatRoom{}}
}

func (m *memRooms) Insert(_ context.Context, room *models.ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *memRooms) FindByID(_ context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memRooms) List(_ context.Context, _ models.RoomFilter) ([]models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ChatRoom{}
	for _, r := range m.rooms {
		if r.IsActive {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}

func (m *memRooms) ReplaceIfVersion(_ context.Context, room *models.ChatRoom, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rooms[room.ID]
	if !ok {
		return database.ErrNotFound
	}
	if stored.Version != expected {
		return database.ErrVersionConflict
	}
	room.Version = expected + 1
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *memRooms) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *memRooms) DeactivateEnded(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rooms {
		if r.IsActive && r.TravelDates != nil && r.TravelDates.EndDate != nil && r.TravelDates.EndDate.Before(now) {
			r.IsActive = false
			r.Version++
			n++
		}
	}
	return n, nil
}
