package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"travelmate/backend/chatroom"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/services"
	"travelmate/backend/utils"
	"travelmate/backend/validators"
)

// errorStatus 將已知錯誤對應到 HTTP 狀態碼與回應訊息
var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrMissingFields, http.StatusBadRequest, "Missing required fields"},
	{services.ErrRoomNotFound, http.StatusNotFound, "Chat room not found"},
	{services.ErrConflict, http.StatusConflict, "Chat room is busy, please retry"},

	{chatroom.ErrAlreadyMember, http.StatusBadRequest, "Already a member"},
	{chatroom.ErrRoomFull, http.StatusBadRequest, "Chat room is full"},
	{chatroom.ErrContentRequired, http.StatusBadRequest, "Message content required"},
	{chatroom.ErrTipRequired, http.StatusBadRequest, "Tip content required"},
	{chatroom.ErrPollDataMissing, http.StatusBadRequest, "Poll data required"},
	{chatroom.ErrPollNotFound, http.StatusNotFound, "Poll not found"},
	{chatroom.ErrInvalidOption, http.StatusBadRequest, "Invalid poll option"},
	{chatroom.ErrInvalidAction, http.StatusBadRequest, "Invalid action"},
	{chatroom.ErrInvalidKind, http.StatusBadRequest, "Invalid message type"},
	{chatroom.ErrUserRequired, http.StatusBadRequest, "User email is required"},
	{chatroom.ErrNotCreator, http.StatusForbidden, "Only creator can delete"},

	{services.ErrChatNotFound, http.StatusNotFound, "Chat not found"},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrDestinationNotFound, http.StatusNotFound, "Destination not found"},
	{services.ErrInvalidID, http.StatusBadRequest, "Invalid ID"},
	{services.ErrEmailRequired, http.StatusBadRequest, "User email is required"},
	{services.ErrDirectChatMembers, http.StatusBadRequest, "A direct chat needs exactly two members"},
	{services.ErrGroupNameRequired, http.StatusBadRequest, "Group chat name is required"},
	{services.ErrEmailTaken, http.StatusConflict, "Email already registered"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{services.ErrForbidden, http.StatusForbidden, "You can only edit your own profile"},

	{services.ErrMessageRequired, http.StatusBadRequest, "Message is required"},
	{services.ErrAssistantNotConfigured, http.StatusInternalServerError, "Chatbot service is not configured"},
}

var upstreamStatus = map[int]string{
	http.StatusUnauthorized:       "Invalid API key",
	http.StatusTooManyRequests:    "Rate limited. Please try again later.",
	http.StatusServiceUnavailable: "Service unavailable.",
}

// responder writes JSON answers; error details are only exposed outside
// production.
type responder struct {
	log         *logger.Logger
	showDetails bool
}

func (rp responder) ok(w http.ResponseWriter, status int, v interface{}) {
	if err := utils.WriteJSON(w, status, v); err != nil {
		rp.log.Errorf("Failed to write %d response: %v", status, err)
	}
}

func (rp responder) writeError(w http.ResponseWriter, status int, message, details string) {
	rp.ok(w, status, models.ErrorResponse{Message: message, Details: details})
}

// fail maps err to a status and message. Unknown errors become 500 with
// fallback as message.
func (rp responder) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			rp.writeError(w, e.status, e.message, "")
			return
		}
	}

	var verrs validators.ValidationErrors
	if errors.As(err, &verrs) {
		rp.writeError(w, http.StatusBadRequest, verrs.Error(), "")
		return
	}
	var enumErr *models.InvalidEnumError
	if errors.As(err, &enumErr) {
		rp.writeError(w, http.StatusBadRequest, enumErr.Error(), "")
		return
	}
	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		if msg, ok := upstreamStatus[upstream.StatusCode]; ok {
			rp.writeError(w, upstream.StatusCode, msg, rp.details(err))
			return
		}
	}

	rp.log.WithContext(r.Context()).WithError(err).Error(fallback)
	rp.writeError(w, http.StatusInternalServerError, fallback, rp.details(err))
}

func (rp responder) details(err error) string {
	if !rp.showDetails || err == nil {
		return ""
	}
	return err.Error()
}

// decode reads a JSON body into v, answering 400 on failure.
func (rp responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rp.log.WithContext(r.Context()).WithError(err).Debug("JSON decode error")
		rp.writeError(w, http.StatusBadRequest, "Invalid request payload", "")
		return false
	}
	return true
}
