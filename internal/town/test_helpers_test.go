package town

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
)

const testTimeout = 2 * time.Second

func startTown(t *testing.T, cfg Config) *Controller {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "T1"
	}
	if cfg.FriendlyName == "" {
		cfg.FriendlyName = "Test Town"
	}
	if cfg.Spawn.Rotation == "" {
		cfg.Spawn = protocol.Location{Rotation: protocol.DirFront}
	}
	c := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-c.Done():
		case <-time.After(testTimeout):
			t.Errorf("controller did not stop")
		}
	})
	return c
}

func joinTown(t *testing.T, c *Controller, name string) (protocol.WelcomeMsg, chan []byte) {
	t.Helper()
	out := make(chan []byte, c.SessionQueueSize())
	resp := make(chan JoinResponse, 1)
	select {
	case c.Join() <- JoinRequest{UserName: name, Avatar: "misa", Out: out, Resp: resp}:
	case <-time.After(testTimeout):
		t.Fatalf("join send timed out")
	}
	select {
	case r := <-resp:
		return r.Welcome, out
	case <-time.After(testTimeout):
		t.Fatalf("join response timed out")
	}
	return protocol.WelcomeMsg{}, nil
}

func sendCommand(t *testing.T, c *Controller, token string, msg protocol.CommandMsg, replyTo chan []byte) {
	t.Helper()
	select {
	case c.Inbox() <- CommandEnvelope{Token: token, Msg: msg, ReplyTo: replyTo}:
	case <-time.After(testTimeout):
		t.Fatalf("inbox send timed out")
	}
}

func recvRaw(t *testing.T, out chan []byte) []byte {
	t.Helper()
	select {
	case b, ok := <-out:
		if !ok {
			t.Fatalf("out channel closed before expected message")
		}
		return b
	case <-time.After(testTimeout):
		t.Fatalf("no message within deadline")
	}
	return nil
}

// awaitEvent reads out until an EVENT with the given name arrives, skipping
// acks and other events in between.
func awaitEvent(t *testing.T, out chan []byte, name string) protocol.EventMsg {
	t.Helper()
	for i := 0; i < 64; i++ {
		b := recvRaw(t, out)
		base, err := protocol.DecodeBase(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type != protocol.TypeEvent {
			continue
		}
		var ev protocol.EventMsg
		if err := json.Unmarshal(b, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Event == name {
			return ev
		}
	}
	t.Fatalf("event %s never arrived", name)
	return protocol.EventMsg{}
}

// awaitAck reads out until an ACK arrives, skipping events in between.
func awaitAck(t *testing.T, out chan []byte) protocol.AckMsg {
	t.Helper()
	for i := 0; i < 64; i++ {
		b := recvRaw(t, out)
		base, err := protocol.DecodeBase(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type != protocol.TypeAck {
			continue
		}
		var ack protocol.AckMsg
		if err := json.Unmarshal(b, &ack); err != nil {
			t.Fatalf("unmarshal ack: %v", err)
		}
		return ack
	}
	t.Fatalf("ack never arrived")
	return protocol.AckMsg{}
}

func mustCreateArea(t *testing.T, c *Controller, token string, out chan []byte, label string, box protocol.BoundingBox) {
	t.Helper()
	sendCommand(t, c, token, protocol.CommandMsg{
		Type:        protocol.TypeAreaCreate,
		Label:       label,
		BoundingBox: &box,
	}, out)
	ack := awaitAck(t, out)
	if !ack.Accepted {
		t.Fatalf("create area %s rejected: %s %s", label, ack.Code, ack.Message)
	}
}

// awaitMoveOf reads out until a PLAYER_MOVED for the given player arrives.
func awaitMoveOf(t *testing.T, out chan []byte, playerID string) protocol.EventMsg {
	t.Helper()
	for i := 0; i < 64; i++ {
		ev := awaitEvent(t, out, protocol.EvPlayerMoved)
		if ev.PlayerID == playerID {
			return ev
		}
	}
	t.Fatalf("move event for %s never arrived", playerID)
	return protocol.EventMsg{}
}

func moveTo(t *testing.T, c *Controller, w protocol.WelcomeMsg, out chan []byte, x, y float64) protocol.EventMsg {
	t.Helper()
	sendCommand(t, c, w.SessionToken, protocol.CommandMsg{
		Type:     protocol.TypeMove,
		Location: &protocol.Location{X: x, Y: y, Rotation: protocol.DirFront, Moving: true},
	}, nil)
	return awaitMoveOf(t, out, w.PlayerID)
}
