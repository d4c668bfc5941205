package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
	"github.com/neu-cs4530/team-project-6l/internal/profile/memory"
	"github.com/neu-cs4530/team-project-6l/internal/protocol"
	"github.com/neu-cs4530/team-project-6l/internal/registry"
)

func newTestStack(t *testing.T, resolver profile.Resolver) (*httptest.Server, *registry.Registry, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := registry.New(ctx, registry.Config{}, nil, nil)
	t.Cleanup(reg.Close)

	townID, _, err := reg.CreateTown("Test Town", true)
	if err != nil {
		t.Fatalf("create town: %v", err)
	}

	srv := httptest.NewServer(NewServer(reg, resolver, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, reg, townID
}

func dialTown(t *testing.T, srv *httptest.Server, townID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?town=" + townID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn, out any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}

func writeMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func joinOverWS(t *testing.T, conn *websocket.Conn, userName string) protocol.WelcomeMsg {
	t.Helper()
	writeMsg(t, conn, protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		UserName:        userName,
	})
	var w protocol.WelcomeMsg
	readMsg(t, conn, &w)
	if w.Type != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %+v", w)
	}
	return w
}

func TestHandshakeAndMoveRoundTrip(t *testing.T) {
	srv, _, townID := newTestStack(t, memory.NewPermissive())

	conn := dialTown(t, srv, townID)
	w := joinOverWS(t, conn, "alice")
	if w.SessionToken == "" || w.PlayerID == "" || len(w.Players) != 1 {
		t.Fatalf("bad welcome: %+v", w)
	}

	writeMsg(t, conn, protocol.CommandMsg{
		Type:         protocol.TypeMove,
		SessionToken: w.SessionToken,
		Location:     &protocol.Location{X: 5, Y: 6, Rotation: protocol.DirRight, Moving: true},
	})

	var ev protocol.EventMsg
	readMsg(t, conn, &ev)
	if ev.Event != protocol.EvPlayerMoved || ev.PlayerID != w.PlayerID {
		t.Fatalf("expected own move echoed back, got %+v", ev)
	}
	if ev.Location == nil || ev.Location.X != 5 || ev.Location.Y != 6 {
		t.Fatalf("bad location: %+v", ev.Location)
	}
}

func TestBroadcastBetweenTwoConnections(t *testing.T) {
	srv, _, townID := newTestStack(t, memory.NewPermissive())

	connA := dialTown(t, srv, townID)
	wA := joinOverWS(t, connA, "alice")

	connB := dialTown(t, srv, townID)
	joinOverWS(t, connB, "bob")

	// A hears B join.
	var joined protocol.EventMsg
	readMsg(t, connA, &joined)
	if joined.Event != protocol.EvPlayerJoined || joined.Player == nil {
		t.Fatalf("expected PLAYER_JOINED on A, got %+v", joined)
	}

	// A moves; B sees it.
	writeMsg(t, connA, protocol.CommandMsg{
		Type:         protocol.TypeMove,
		SessionToken: wA.SessionToken,
		Location:     &protocol.Location{X: 1, Y: 2, Rotation: protocol.DirFront},
	})
	var ev protocol.EventMsg
	readMsg(t, connB, &ev)
	if ev.Event != protocol.EvPlayerMoved || ev.PlayerID != wA.PlayerID {
		t.Fatalf("expected A's move on B, got %+v", ev)
	}
}

func TestJoinUnknownTownIs404(t *testing.T) {
	srv, _, _ := newTestStack(t, memory.NewPermissive())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?town=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial should fail for unknown town")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 before upgrade, got %+v", resp)
	}
}

func TestJoinUnknownProfileRejected(t *testing.T) {
	srv, _, townID := newTestStack(t, memory.New())

	conn := dialTown(t, srv, townID)
	writeMsg(t, conn, protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		UserName:        "ghost",
	})

	var ack protocol.AckMsg
	readMsg(t, conn, &ack)
	if ack.Type != protocol.TypeAck || ack.Accepted || ack.Code != protocol.ErrProfileNotFound {
		t.Fatalf("expected profile rejection, got %+v", ack)
	}
}

func TestJoinBadVersionRejected(t *testing.T) {
	srv, _, townID := newTestStack(t, memory.NewPermissive())

	conn := dialTown(t, srv, townID)
	writeMsg(t, conn, protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: "0.9",
		UserName:        "alice",
	})

	var ack protocol.AckMsg
	readMsg(t, conn, &ack)
	if ack.Accepted || ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("expected version rejection, got %+v", ack)
	}
}

func TestDisconnectLeavesTown(t *testing.T) {
	srv, reg, townID := newTestStack(t, memory.NewPermissive())

	conn := dialTown(t, srv, townID)
	joinOverWS(t, conn, "alice")

	ctl, _ := reg.Get(townID)
	deadline := time.After(3 * time.Second)
	for ctl.Occupancy() != 1 {
		select {
		case <-deadline:
			t.Fatalf("join never registered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	_ = conn.Close()

	deadline = time.After(3 * time.Second)
	for ctl.Occupancy() != 0 {
		select {
		case <-deadline:
			t.Fatalf("disconnect should leave the town, occupancy %d", ctl.Occupancy())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
