package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"signal-relay/internal/core"
	"signal-relay/internal/domain"
)

// Inbound message types.
const (
	TypeRegister = "REGISTER"
	TypeLogin    = "LOGIN"
	TypeJoinRoom = "JOIN_ROOM"
	TypeSignal   = "SIGNAL"
)

// Outbound message types.
const (
	TypeRegisterSuccess = "REGISTER_SUCCESS"
	TypeLoginSuccess    = "LOGIN_SUCCESS"
	TypeLoginFailed     = "LOGIN_FAILED"
	TypeUnauthorized    = "UNAUTHORIZED"
	TypeJoinedRoom      = "JOINED_ROOM"
	TypeUserJoined      = "USER_JOINED"
	TypeUserLeft        = "USER_LEFT"
)

// envelope is the tagged wrapper every inbound frame decodes into. The
// per-type payload is kept raw until the handler knows what to expect.
type envelope struct {
	Type    string          `json:"type"`
	Token   string          `json:"token,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type authPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type joinPayload struct {
	RoomID string `json:"roomId"`
}

// signalPayload carries an opaque signal blob. The relay never interprets it.
type signalPayload struct {
	RoomID string          `json:"roomId"`
	Signal json.RawMessage `json:"signal"`
	To     string          `json:"to,omitempty"`
}

type signalBody struct {
	Signal json.RawMessage `json:"signal"`
	RoomID string          `json:"roomId"`
}

func registerSuccessMsg(user *domain.User) core.Frame {
	return mustFrame(struct {
		Type string       `json:"type"`
		User *domain.User `json:"user"`
	}{TypeRegisterSuccess, user})
}

func loginSuccessMsg(token string) core.Frame {
	return mustFrame(struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}{TypeLoginSuccess, token})
}

func loginFailedMsg() core.Frame {
	return mustFrame(struct {
		Type string `json:"type"`
	}{TypeLoginFailed})
}

func unauthorizedMsg() core.Frame {
	return mustFrame(struct {
		Type string `json:"type"`
	}{TypeUnauthorized})
}

func joinedRoomMsg(roomID domain.RoomID, userID domain.UserID) core.Frame {
	return mustFrame(struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
		UserID domain.UserID `json:"userId"`
	}{TypeJoinedRoom, roomID, userID})
}

func userJoinedMsg(userID domain.UserID) core.Frame {
	return mustFrame(struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
	}{TypeUserJoined, userID})
}

func userLeftMsg(userID domain.UserID) core.Frame {
	return mustFrame(struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
	}{TypeUserLeft, userID})
}

func signalMsg(from domain.UserID, signal json.RawMessage, roomID domain.RoomID) core.Frame {
	return mustFrame(struct {
		Type    string        `json:"type"`
		From    domain.UserID `json:"from"`
		Payload signalBody    `json:"payload"`
	}{TypeSignal, from, signalBody{Signal: signal, RoomID: string(roomID)}})
}

func mustFrame(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable with an unmarshalable type, a programming error.
		log.Error().Err(err).Str("module", "app.protocol").Msg("marshal outbound message")
		return nil
	}
	return core.Frame(b)
}
