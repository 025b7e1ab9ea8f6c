package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"signal-relay/internal/core"
	"signal-relay/internal/domain"
)

// TokenVerifier is the identity-verification collaborator. Verification is
// stateless and runs on every non-auth message, so a revoked or expired
// token stops working mid-session.
type TokenVerifier interface {
	Verify(token string) (domain.UserID, error)
}

// Authenticator is the credential collaborator behind REGISTER and LOGIN.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Router owns the session registry and room index and is the only writer of
// both. It dispatches inbound frames, mutates membership state and emits
// the resulting broadcasts and unicasts.
type Router struct {
	registry *core.Registry
	rooms    *core.RoomIndex
	verifier TokenVerifier
	auth     Authenticator
}

func NewRouter(verifier TokenVerifier, auth Authenticator) *Router {
	return &Router{
		registry: core.NewRegistry(),
		rooms:    core.NewRoomIndex(),
		verifier: verifier,
		auth:     auth,
	}
}

// OnMessage handles one decoded transport frame for conn. Undecodable
// frames are dropped without a reply.
func (r *Router) OnMessage(ctx context.Context, conn core.Conn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Msg("malformed message dropped")
		return
	}

	// Auth messages carry no token and skip the verification gate.
	switch env.Type {
	case TypeRegister:
		r.handleRegister(ctx, conn, env.Payload)
		return
	case TypeLogin:
		r.handleLogin(ctx, conn, env.Payload)
		return
	}

	userID, err := r.verifier.Verify(env.Token)
	if err != nil {
		log.Info().Str("module", "app.router").Str("type", env.Type).Msg("unauthorized message")
		_ = conn.TrySend(unauthorizedMsg())
		return
	}

	switch env.Type {
	case TypeJoinRoom:
		r.handleJoin(conn, userID, env.Payload)
	case TypeSignal:
		r.handleSignal(conn, userID, env.Payload)
	default:
		log.Warn().Str("module", "app.router").Str("type", env.Type).Msg("unknown message type")
	}
}

func (r *Router) handleRegister(ctx context.Context, conn core.Conn, payload json.RawMessage) {
	var p authPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Msg("bad register payload")
		return
	}
	user, err := r.auth.Register(ctx, p.Email, p.Password)
	if err != nil {
		log.Info().Err(err).Str("module", "app.router").Str("email", p.Email).Msg("register failed")
		return
	}
	_ = conn.TrySend(registerSuccessMsg(user))
}

func (r *Router) handleLogin(ctx context.Context, conn core.Conn, payload json.RawMessage) {
	var p authPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Msg("bad login payload")
		return
	}
	token, err := r.auth.Login(ctx, p.Email, p.Password)
	if err != nil {
		log.Info().Str("module", "app.router").Str("email", p.Email).Msg("login failed")
		_ = conn.TrySend(loginFailedMsg())
		return
	}
	_ = conn.TrySend(loginSuccessMsg(token))
}

func (r *Router) handleJoin(conn core.Conn, userID domain.UserID, payload json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Msg("bad join payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)

	// A connection holds at most one (user, room) membership: re-joining
	// under a different room or a different identity leaves the old one
	// first, with the usual departure notification if this was the user's
	// last session there. Without this the old index entry would outlive
	// the session and never be reachable by close cleanup.
	if prior, ok := r.registry.Lookup(conn); ok && (prior.RoomID != roomID || prior.UserID != userID) {
		res := r.rooms.Leave(prior.RoomID, prior.UserID, conn)
		if res.UserFullyLeft {
			r.registry.Broadcast(prior.RoomID, conn, userLeftMsg(prior.UserID))
		}
	}

	r.registry.Register(conn, userID, roomID)
	r.rooms.Join(roomID, userID, conn)

	log.Info().Str("module", "app.router").Str("user", string(userID)).Str("room", string(roomID)).Msg("join room")
	_ = conn.TrySend(joinedRoomMsg(roomID, userID))
	r.registry.Broadcast(roomID, conn, userJoinedMsg(userID))
}

func (r *Router) handleSignal(conn core.Conn, userID domain.UserID, payload json.RawMessage) {
	var p signalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Msg("bad signal payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)
	frame := signalMsg(userID, p.Signal, roomID)

	if p.To != "" {
		r.unicast(domain.UserID(p.To), frame)
		return
	}
	r.registry.Broadcast(roomID, conn, frame)
}

// unicast delivers to the first live connection of the target user that
// accepts the send. A multi-session target still gets at most one copy; a
// stale connection is skipped, not reaped. With no deliverable connection
// the signal is dropped without telling the sender.
func (r *Router) unicast(to domain.UserID, frame core.Frame) {
	for _, conn := range r.registry.ConnsByUser(to) {
		if !conn.Open() {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.router").Str("to", string(to)).Msg("unicast send failed")
			continue
		}
		return
	}
	log.Debug().Str("module", "app.router").Str("to", string(to)).Msg("unicast target has no live connection")
}

// OnClose tears down everything conn held. It must run after the last
// message for conn has been handled; the transport adapter guarantees that
// by calling it from the same goroutine that reads the connection.
func (r *Router) OnClose(conn core.Conn) {
	sess, ok := r.registry.Unregister(conn)
	if !ok {
		return
	}
	res := r.rooms.Leave(sess.RoomID, sess.UserID, conn)
	if res.UserFullyLeft {
		// No-ops naturally when the room emptied with this user.
		r.registry.Broadcast(sess.RoomID, conn, userLeftMsg(sess.UserID))
	}
	log.Info().Str("module", "app.router").Str("user", string(sess.UserID)).Str("room", string(sess.RoomID)).Msg("connection closed")
}

// OnError is an observability hook only; the close event that follows every
// transport error does the cleanup.
func (r *Router) OnError(conn core.Conn, err error) {
	log.Warn().Err(err).Str("module", "app.router").Msg("transport error")
}

// RoomStats snapshots room membership for the observability endpoint.
func (r *Router) RoomStats() map[domain.RoomID]core.RoomStats {
	return r.rooms.Stats()
}
