package roomclient

import (
	"context"
	"encoding/json"
	"sync"

	"travelmate/backend/chatroom"
	"travelmate/backend/logger"
	"travelmate/backend/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the local user of a session.
type Identity struct {
	Email string
	Name  string
}

// Session keeps the local copy of one chat room. HTTP responses are the
// only source of new entries; realtime events from others only merge onto
// persisted data or trigger a re-fetch.
type Session struct {
	client    *Client
	transport Transport
	roomID    string
	me        Identity
	clientID  string
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	room *models.ChatRoom

	typing *TypingSet

	refetchMu  sync.Mutex
	refetching bool
	dirty      bool
	fetches    sync.WaitGroup
}

// Open fetches the room and subscribes the transport to its events.
func Open(ctx context.Context, client *Client, transport Transport, roomID string, me Identity, log *logger.Logger) (*Session, error) {
	room, err := client.FetchRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := transport.Send(models.EventJoinRoom, roomID); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithCancel(context.Background())
	clientID := uuid.NewString()
	return &Session{
		client:    client,
		transport: transport,
		roomID:    roomID,
		me:        me,
		clientID:  clientID,
		log:       log.WithFields(map[string]interface{}{"room_id": roomID, "user": me.Email, "client_id": clientID}),
		ctx:       sctx,
		cancel:    cancel,
		room:      room,
		typing:    NewTypingSet(me.Name),
	}, nil
}

// Room returns a copy of the current projection.
func (s *Session) Room() *models.ChatRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Clone()
}

// ClientID identifies this session on the events it emits.
func (s *Session) ClientID() string {
	return s.clientID
}

// Typing returns the names of others currently typing.
func (s *Session) Typing() []string {
	return s.typing.Names()
}

// Typist returns a typing notifier for the local user.
func (s *Session) Typist() *Typist {
	return NewTypist(s.transport, s.roomID, s.me.Name, s.clientID)
}

// Run consumes realtime events until ctx is done or the transport closes.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-s.transport.Events():
			if !ok {
				return nil
			}
			s.Handle(env)
		}
	}
}

// Close leaves the realtime room and waits for pending re-fetches.
func (s *Session) Close() error {
	err := s.transport.Send(models.EventLeaveRoom, s.roomID)
	s.cancel()
	s.fetches.Wait()
	return err
}

func (s *Session) Join(ctx context.Context) error {
	room, err := s.mutate(ctx, models.UpdateChatRoomRequest{Action: models.ActionJoin})
	if err != nil {
		return err
	}
	member := models.Member{Email: s.me.Email, Name: s.me.Name}
	for _, m := range room.Members {
		if m.Email == s.me.Email {
			member = m
		}
	}
	return s.transport.Send(models.EventMemberJoined, models.MemberJoinedPayload{RoomID: s.roomID, Member: member, ClientID: s.clientID})
}

func (s *Session) Leave(ctx context.Context) error {
	if _, err := s.mutate(ctx, models.UpdateChatRoomRequest{Action: models.ActionLeave}); err != nil {
		return err
	}
	return s.transport.Send(models.EventMemberLeft, models.MemberLeftPayload{
		RoomID:      s.roomID,
		MemberEmail: s.me.Email,
		MemberName:  s.me.Name,
		ClientID:    s.clientID,
	})
}

func (s *Session) SendMessage(ctx context.Context, content string) error {
	in := models.MessageInput{Content: content, MessageType: models.KindText}
	if _, err := s.mutate(ctx, models.UpdateChatRoomRequest{Action: models.ActionMessage, Message: &in}); err != nil {
		return err
	}
	return s.transport.Send(models.EventSendMessage, models.MessagePayload{
		RoomID:    s.roomID,
		Message:   in,
		UserEmail: s.me.Email,
		UserName:  s.me.Name,
		ClientID:  s.clientID,
	})
}

// CreatePoll posts a poll with the given options.
func (s *Session) CreatePoll(ctx context.Context, question string, options []string) error {
	in := models.MessageInput{Content: question, MessageType: models.KindPoll}
	for _, o := range options {
		in.PollOptions = append(in.PollOptions, models.PollOption{Option: o, Votes: []string{}})
	}
	if _, err := s.mutate(ctx, models.UpdateChatRoomRequest{Action: models.ActionMessage, Message: &in}); err != nil {
		return err
	}
	return s.transport.Send(models.EventCreatePoll, models.PollPayload{
		RoomID:    s.roomID,
		Poll:      in,
		UserEmail: s.me.Email,
		UserName:  s.me.Name,
		ClientID:  s.clientID,
	})
}

func (s *Session) ShareTip(ctx context.Context, tip string) error {
	in := models.MessageInput{Content: tip}
	if _, err := s.mutate(ctx, models.UpdateChatRoomRequest{Action: models.ActionTip, Message: &in}); err != nil {
		return err
	}
	return s.transport.Send(models.EventShareTip, models.TipPayload{
		RoomID:    s.roomID,
		Tip:       tip,
		UserEmail: s.me.Email,
		UserName:  s.me.Name,
		ClientID:  s.clientID,
	})
}

// Vote selects option on the persisted poll pollID.
func (s *Session) Vote(ctx context.Context, pollID primitive.ObjectID, option int) error {
	req := models.UpdateChatRoomRequest{
		Action:   models.ActionVote,
		PollData: &models.PollVote{MessageID: pollID.Hex(), OptionIndex: &option},
	}
	if _, err := s.mutate(ctx, req); err != nil {
		return err
	}
	return s.transport.Send(models.EventVotePoll, models.VotePayload{
		RoomID:      s.roomID,
		MessageID:   pollID.Hex(),
		OptionIndex: option,
		UserEmail:   s.me.Email,
		ClientID:    s.clientID,
	})
}

// mutate performs the HTTP mutation and adopts the stored room.
func (s *Session) mutate(ctx context.Context, req models.UpdateChatRoomRequest) (*models.ChatRoom, error) {
	req.UserEmail = s.me.Email
	req.UserName = s.me.Name
	room, err := s.client.Do(ctx, s.roomID, req)
	if err != nil {
		return nil, err
	}
	s.adopt(room)
	return room, nil
}

// adopt replaces the projection unless room is older than what we hold.
func (s *Session) adopt(room *models.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room != nil && room.Version < s.room.Version {
		return
	}
	s.room = room
}

// Handle reconciles one realtime event with the projection. Echoes of this
// session's own events are skipped; events from another session of the same
// user are treated like anyone else's.
func (s *Session) Handle(env models.Envelope) {
	switch env.Event {
	case models.EventUserTyping:
		var p models.TypingPayload
		if s.decode(env, &p) {
			s.typing.Set(p.UserName, p.IsTyping)
		}

	case models.EventNewMessage, models.EventNewPoll, models.EventNewTip:
		var p struct {
			ClientID string `json:"clientId"`
		}
		if s.decode(env, &p) && !s.own(p.ClientID) {
			s.refetch()
		}

	case models.EventPollVoted:
		var p models.VotePayload
		if !s.decode(env, &p) || p.UserEmail == "" || s.own(p.ClientID) {
			return
		}
		if !s.mergeVote(p) {
			s.refetch()
		}

	case models.EventRoomMemberJoined:
		var p models.MemberJoinedPayload
		if !s.decode(env, &p) || p.Member.Email == "" || s.own(p.ClientID) {
			return
		}
		s.mu.Lock()
		if !s.room.HasMember(p.Member.Email) {
			s.room.Members = append(s.room.Members, p.Member)
		}
		s.mu.Unlock()
		s.refetch()

	case models.EventRoomMemberLeft:
		var p models.MemberLeftPayload
		if !s.decode(env, &p) || p.MemberEmail == "" || s.own(p.ClientID) {
			return
		}
		s.mu.Lock()
		kept := s.room.Members[:0:0]
		for _, m := range s.room.Members {
			if m.Email != p.MemberEmail {
				kept = append(kept, m)
			}
		}
		s.room.Members = kept
		s.mu.Unlock()
		s.typing.Set(p.MemberName, false)
		s.refetch()
	}
}

func (s *Session) own(clientID string) bool {
	return clientID != "" && clientID == s.clientID
}

func (s *Session) decode(env models.Envelope, v interface{}) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		s.log.WithError(err).WithField("event", env.Event).Warn("Ignoring malformed event")
		return false
	}
	return true
}

// mergeVote moves the voter on the persisted poll. It reports false when the
// poll or option is unknown locally.
func (s *Session) mergeVote(p models.VotePayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.room.Clone()
	idx := p.OptionIndex
	err := chatroom.Vote(next, p.UserEmail, &models.PollVote{MessageID: p.MessageID, OptionIndex: &idx})
	if err != nil {
		return false
	}
	s.room = next
	return true
}

// refetch reloads the room in the background. Requests arriving while a
// fetch is running collapse into one more fetch.
func (s *Session) refetch() {
	s.refetchMu.Lock()
	defer s.refetchMu.Unlock()
	if s.refetching {
		s.dirty = true
		return
	}
	s.refetching = true
	s.fetches.Add(1)
	go s.refetchLoop()
}

func (s *Session) refetchLoop() {
	defer s.fetches.Done()
	for {
		room, err := s.client.FetchRoom(s.ctx, s.roomID)
		if err != nil {
			s.log.WithError(err).Warn("Failed to refresh chat room")
		} else {
			s.adopt(room)
		}

		s.refetchMu.Lock()
		if !s.dirty || s.ctx.Err() != nil {
			s.refetching = false
			s.dirty = false
			s.refetchMu.Unlock()
			return
		}
		s.dirty = false
		s.refetchMu.Unlock()
	}
}
