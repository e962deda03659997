// Package chatroom holds the state transitions of a chat room document.
//
// Every transition works on an in-memory *models.ChatRoom and either mutates
// it completely or returns an error and leaves it untouched. Persistence and
// concurrency control live in the services package.
package chatroom

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"travelmate/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAlreadyMember   = errors.New("already a member")
	ErrRoomFull        = errors.New("chat room is full")
	ErrContentRequired = errors.New("message content required")
	ErrTipRequired     = errors.New("tip content required")
	ErrPollDataMissing = errors.New("poll data required")
	ErrPollNotFound    = errors.New("poll not found")
	ErrInvalidOption   = errors.New("invalid poll option")
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidKind     = errors.New("invalid message type")
	ErrUserRequired    = errors.New("userEmail is required")
	ErrNotCreator      = errors.New("only creator can delete")
)

// Clock is overridden in tests.
var Clock = time.Now

// New builds a room from a create request: the creator is the first member
// and a system join notice opens the message log.
func New(req models.CreateChatRoomRequest) *models.ChatRoom {
	now := Clock()

	maxMembers := req.MaxMembers
	if maxMembers <= 0 {
		maxMembers = models.DefaultMaxMembers
	}
	category := req.Category
	if category == "" {
		category = models.CategoryAdventure
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.ChatRoom{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Destination: req.Destination,
		Continent:   req.Continent,
		TravelDates: req.TravelDates,
		MaxMembers:  maxMembers,
		Creator:     req.Creator,
		CreatorName: req.CreatorName,
		Members: []models.Member{{
			Email:    req.Creator,
			Name:     req.CreatorName,
			JoinedAt: now,
		}},
		Messages: []models.Message{systemMessage(models.KindJoin,
			fmt.Sprintf("%s created this chat room for %s! 🎉", req.CreatorName, req.Destination), now)},
		Tags:      tags,
		Category:  category,
		IsActive:  true,
		RoomImage: req.RoomImage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply runs the transition named by req.Action against room.
func Apply(room *models.ChatRoom, req models.UpdateChatRoomRequest) error {
	if req.UserEmail == "" {
		switch req.Action {
		case models.ActionJoin, models.ActionLeave, models.ActionMessage, models.ActionVote, models.ActionTip:
			return ErrUserRequired
		}
	}

	switch req.Action {
	case models.ActionJoin:
		return Join(room, req.UserEmail, req.UserName)
	case models.ActionLeave:
		Leave(room, req.UserEmail, req.UserName)
		return nil
	case models.ActionMessage:
		return PostMessage(room, req.UserEmail, req.UserName, req.Message)
	case models.ActionVote:
		return Vote(room, req.UserEmail, req.PollData)
	case models.ActionTip:
		var content string
		if req.Message != nil {
			content = req.Message.Content
		}
		return ShareTip(room, req.UserEmail, req.UserName, content)
	default:
		return ErrInvalidAction
	}
}

func Join(room *models.ChatRoom, email, name string) error {
	if room.HasMember(email) {
		return ErrAlreadyMember
	}
	if len(room.Members) >= room.MaxMembers {
		return ErrRoomFull
	}

	now := Clock()
	room.Members = append(room.Members, models.Member{Email: email, Name: name, JoinedAt: now})
	room.Messages = append(room.Messages, systemMessage(models.KindJoin,
		fmt.Sprintf("%s joined the adventure! 🎒", name), now))
	room.UpdatedAt = now
	return nil
}

// Leave drops email from the roster. Leaving a room one is not a member of
// still records the notice.
func Leave(room *models.ChatRoom, email, name string) {
	now := Clock()
	kept := make([]models.Member, 0, len(room.Members))
	for _, m := range room.Members {
		if m.Email != email {
			kept = append(kept, m)
		}
	}
	room.Members = kept
	room.Messages = append(room.Messages, systemMessage(models.KindLeave,
		fmt.Sprintf("%s left the chat room.", name), now))
	room.UpdatedAt = now
}

// PostMessage appends a text or poll message.
func PostMessage(room *models.ChatRoom, email, name string, in *models.MessageInput) error {
	if in == nil || strings.TrimSpace(in.Content) == "" {
		return ErrContentRequired
	}
	kind := in.MessageType
	if kind == "" {
		kind = models.KindText
	}

	msg := models.Message{
		ID:          primitive.NewObjectID(),
		Sender:      email,
		SenderName:  name,
		Content:     in.Content,
		MessageType: kind,
		CreatedAt:   Clock(),
	}

	switch kind {
	case models.KindText:
	case models.KindPoll:
		msg.PollOptions = make([]models.PollOption, 0, len(in.PollOptions))
		for _, o := range in.PollOptions {
			// client-supplied votes are dropped; every poll starts with no votes
			msg.PollOptions = append(msg.PollOptions, models.PollOption{Option: o.Option, Votes: []string{}})
		}
	case models.KindTip:
	default:
		return ErrInvalidKind
	}

	room.Messages = append(room.Messages, msg)
	room.UpdatedAt = msg.CreatedAt
	return nil
}

// Vote moves voter's vote to the selected option of a poll: the voter is
// removed from every option first, so each voter is counted at most once.
func Vote(room *models.ChatRoom, voter string, data *models.PollVote) error {
	if data == nil || data.MessageID == "" || data.OptionIndex == nil {
		return ErrPollDataMissing
	}
	id, err := primitive.ObjectIDFromHex(data.MessageID)
	if err != nil {
		return ErrPollNotFound
	}
	poll := room.FindMessage(id)
	if poll == nil || poll.MessageType != models.KindPoll {
		return ErrPollNotFound
	}
	idx := *data.OptionIndex
	if idx < 0 || idx >= len(poll.PollOptions) {
		return ErrInvalidOption
	}

	for i := range poll.PollOptions {
		poll.PollOptions[i].Votes = without(poll.PollOptions[i].Votes, voter)
	}
	poll.PollOptions[idx].Votes = append(poll.PollOptions[idx].Votes, voter)
	room.UpdatedAt = Clock()
	return nil
}

func ShareTip(room *models.ChatRoom, email, name, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrTipRequired
	}
	now := Clock()
	room.Messages = append(room.Messages, models.Message{
		ID:          primitive.NewObjectID(),
		Sender:      email,
		SenderName:  name,
		Content:     content,
		MessageType: models.KindTip,
		CreatedAt:   now,
	})
	room.UpdatedAt = now
	return nil
}

// CanDelete reports whether requester may delete the room.
func CanDelete(room *models.ChatRoom, requester string) error {
	if requester == "" || room.Creator != requester {
		return ErrNotCreator
	}
	return nil
}

func systemMessage(kind models.MessageKind, content string, at time.Time) models.Message {
	return models.Message{
		ID:          primitive.NewObjectID(),
		Sender:      models.SystemSender,
		SenderName:  models.SystemSenderName,
		Content:     content,
		MessageType: kind,
		CreatedAt:   at,
	}
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
