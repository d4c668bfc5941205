// Package ws is the session transport: one WebSocket per session carrying
// the JOIN handshake, post-join commands, and the ordered broadcast stream.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
	"github.com/neu-cs4530/team-project-6l/internal/protocol"
	"github.com/neu-cs4530/team-project-6l/internal/registry"
	"github.com/neu-cs4530/team-project-6l/internal/town"
)

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second
	readTimeout      = 60 * time.Second
)

type Server struct {
	registry *registry.Registry
	resolver profile.Resolver
	log      *zap.SugaredLogger

	upgrader websocket.Upgrader
}

func NewServer(reg *registry.Registry, resolver profile.Resolver, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		registry: reg,
		resolver: resolver,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler serves /v1/ws?town=<townID>.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		townID := r.URL.Query().Get("town")
		ctl, ok := s.registry.Get(townID)
		if !ok {
			http.Error(rw, "town not found", http.StatusNotFound)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		token, out := s.handshake(r.Context(), conn, ctl)
		if token == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine: drains the session queue until the controller
		// closes it (leave or town shutdown) or the connection dies.
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
							time.Now().Add(time.Second))
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || !protocol.IsCommand(base.Type) {
				continue
			}
			var cmd protocol.CommandMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			select {
			case <-ctx.Done():
			case <-ctl.Done():
			case ctl.Inbox() <- town.CommandEnvelope{Token: cmd.SessionToken, Msg: cmd, ReplyTo: out}:
			}
			if base.Type == protocol.TypeLeave {
				break
			}
		}

		// A disconnect is an immediate, idempotent leave.
		select {
		case ctl.Leave() <- token:
		case <-ctl.Done():
		}
	}
}

// handshake reads the JOIN message, resolves the profile (outside the town
// loop, so a slow lookup never stalls the town), joins, and writes WELCOME.
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn, ctl *town.Controller) (token string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeJoin {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected JOIN"),
			time.Now().Add(time.Second))
		return "", nil
	}

	var join protocol.JoinMsg
	if err := json.Unmarshal(msg, &join); err != nil {
		return "", nil
	}
	if join.ProtocolVersion != protocol.Version {
		s.reject(conn, protocol.ErrProtoBadRequest, "bad protocol_version")
		return "", nil
	}
	if join.UserName == "" {
		s.reject(conn, protocol.ErrValidation, "user_name is required")
		return "", nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()
	prof, err := s.resolver.ResolveUsername(lookupCtx, join.UserName)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			s.reject(conn, protocol.ErrProfileNotFound, "no profile for that username")
		} else {
			s.log.Warnw("profile lookup", "user_name", join.UserName, "error", err)
			s.reject(conn, protocol.ErrProtoBadRequest, "profile lookup failed")
		}
		return "", nil
	}

	avatar := join.Avatar
	if avatar == "" {
		avatar = prof.Avatar
	}

	out = make(chan []byte, ctl.SessionQueueSize())
	respCh := make(chan town.JoinResponse, 1)
	select {
	case ctl.Join() <- town.JoinRequest{
		UserName: prof.DisplayName,
		Avatar:   avatar,
		Out:      out,
		Resp:     respCh,
	}:
	case <-ctl.Done():
		return "", nil
	case <-lookupCtx.Done():
		return "", nil
	}
	var resp town.JoinResponse
	select {
	case resp = <-respCh:
	case <-ctl.Done():
		return "", nil
	case <-lookupCtx.Done():
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		select {
		case ctl.Leave() <- resp.Welcome.SessionToken:
		case <-ctl.Done():
		}
		return "", nil
	}
	return resp.Welcome.SessionToken, out
}

func (s *Server) reject(conn *websocket.Conn, code, message string) {
	_ = writeJSON(conn, protocol.NewAck(protocol.TypeJoin, false, code, message))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
