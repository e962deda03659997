package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelmate/backend/database"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatService struct {
	chats ChatRepository
	users UserRepository
	log   *logger.Logger
}

func NewChatService(chats ChatRepository, users UserRepository, log *logger.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, log: log}
}

// FindOrCreate returns the existing chat for the request or creates one.
// created reports which of the two happened.
//
// A direct chat is identified by its member set, a group chat by its name.
// The chat is written before the members' back-references; a failure in
// between leaves the chat without them.
func (s *ChatService) FindOrCreate(ctx context.Context, req models.CreateChatRequest) (chat *models.Chat, created bool, err error) {
	current, err := primitive.ObjectIDFromHex(req.CurrentUserID)
	if err != nil {
		return nil, false, ErrInvalidID
	}
	ids := make([]primitive.ObjectID, 0, len(req.Members)+1)
	for _, m := range req.Members {
		id, err := primitive.ObjectIDFromHex(m)
		if err != nil {
			return nil, false, ErrInvalidID
		}
		ids = append(ids, id)
	}
	members := utils.UniqueObjectIDs(append(ids, current))

	var existing *models.Chat
	name := strings.TrimSpace(req.Name)
	if req.IsGroupChat {
		if name == "" {
			return nil, false, ErrGroupNameRequired
		}
		existing, err = s.chats.FindGroupByName(ctx, name)
	} else {
		if len(members) != 2 {
			return nil, false, ErrDirectChatMembers
		}
		existing, err = s.chats.FindDirect(ctx, members)
	}
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}

	chat = &models.Chat{
		Members:     members,
		IsGroupChat: req.IsGroupChat,
		GroupPhoto:  req.GroupPhoto,
		CreatedAt:   time.Now(),
	}
	if req.IsGroupChat {
		chat.Name = name
	}
	if err := s.chats.Insert(ctx, chat); err != nil {
		return nil, false, err
	}
	if err := s.users.AddChat(ctx, members, chat.ID); err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("chat_id", chat.ID.Hex()).
			Error("Chat created but member back-references were not written")
		return nil, false, err
	}
	return chat, true, nil
}

// ListForUser returns the user's chats in the order stored on the user, with
// members resolved.
func (s *ChatService) ListForUser(ctx context.Context, email string) ([]models.PopulatedChat, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	chats, err := s.chats.FindByIDs(ctx, user.Chats)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Chat, len(chats))
	var memberIDs []primitive.ObjectID
	for _, c := range chats {
		byID[c.ID] = c
		memberIDs = append(memberIDs, c.Members...)
	}

	people, err := s.users.FindByIDs(ctx, utils.UniqueObjectIDs(memberIDs))
	if err != nil {
		return nil, err
	}
	userByID := indexUsers(people)

	out := make([]models.PopulatedChat, 0, len(user.Chats))
	for _, id := range user.Chats {
		c, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, models.PopulatedChat{
			ID:          c.ID,
			Members:     resolveMembers(c.Members, userByID),
			IsGroupChat: c.IsGroupChat,
			Name:        c.Name,
			GroupPhoto:  c.GroupPhoto,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out, nil
}

// Details builds the chat header for viewerID. A chat with more than two
// members is shown as a group; otherwise the other participant is named.
func (s *ChatService) Details(ctx context.Context, chatID, viewerID string) (*models.ChatDetails, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}
	chat, err := s.chats.FindByID(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}

	people, err := s.users.FindByIDs(ctx, chat.Members)
	if err != nil {
		return nil, err
	}
	members := resolveMembers(chat.Members, indexUsers(people))

	details := &models.ChatDetails{
		IsGroup: len(members) > 2,
		Members: members,
	}
	if details.IsGroup {
		details.GroupName = &chat.Name
		details.GroupPic = &chat.GroupPhoto
		return details, nil
	}
	if viewerID == "" {
		return details, nil
	}
	for i := range members {
		if members[i].ID.Hex() != viewerID {
			name := members[i].DisplayName()
			pic := members[i].ProfileImage
			details.OtherUserName = &name
			details.OtherUserPic = &pic
			break
		}
	}
	return details, nil
}

func indexUsers(users []models.User) map[primitive.ObjectID]models.User {
	m := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		u.Password = ""
		m[u.ID] = u
	}
	return m
}

// resolveMembers keeps the order of ids and skips users that no longer exist.
func resolveMembers(ids []primitive.ObjectID, users map[primitive.ObjectID]models.User) []models.User {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
