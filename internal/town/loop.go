package town

import (
	"context"
	"encoding/json"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
)

// Run processes town events until ctx is canceled or Shutdown is requested.
// It is the only goroutine allowed to touch controller state.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.teardown()
			return ctx.Err()
		case req := <-c.join:
			c.handleJoin(req)
		case token := <-c.leave:
			c.handleLeave(token)
		case env := <-c.inbox:
			c.handleCommand(env)
		case req := <-c.rename:
			c.friendlyName = req.Name
			req.Resp <- struct{}{}
		case req := <-c.snapshot:
			req.Resp <- snapshotResponse{Players: c.playerInfos(), Areas: c.areaInfos()}
		case req := <-c.shutdown:
			c.broadcast(protocol.NewEvent(protocol.EvTownClosing))
			c.teardown()
			req.Resp <- struct{}{}
			return nil
		}
		c.publishMetrics()
	}
}

func (c *Controller) handleCommand(env CommandEnvelope) {
	sess := c.sessions[env.Token]
	if sess == nil {
		// Tolerate races with leave: moves and leaves are silent no-ops,
		// everything else gets an auth failure back. No state is touched.
		if env.ReplyTo != nil && env.Msg.Type != protocol.TypeMove && env.Msg.Type != protocol.TypeLeave {
			c.reply(env.ReplyTo, protocol.NewAck(ackFor(env.Msg), false, protocol.ErrAuth, "unknown session token"))
		}
		return
	}
	switch env.Msg.Type {
	case protocol.TypeMove:
		c.handleMove(sess, env.Msg)
	case protocol.TypeAreaCreate:
		c.handleAreaCreate(sess, env.Msg, env.ReplyTo)
	case protocol.TypeAreaUpdate:
		c.handleAreaUpdate(sess, env.Msg, env.ReplyTo)
	case protocol.TypeAreaDestroy:
		c.handleAreaDestroy(sess, env.Msg, env.ReplyTo)
	case protocol.TypeLeave:
		c.handleLeave(env.Token)
	default:
		if env.ReplyTo != nil {
			c.reply(env.ReplyTo, protocol.NewAck(ackFor(env.Msg), false, protocol.ErrProtoBadRequest, "unknown command type"))
		}
	}
}

func ackFor(msg protocol.CommandMsg) string {
	if msg.CommandID != "" {
		return msg.CommandID
	}
	return msg.Type
}

func (c *Controller) teardown() {
	for _, sess := range c.sessions {
		delete(c.liveOuts, sess.Out)
		close(sess.Out)
	}
	c.sessions = make(map[string]*Session)
	c.players = make(map[string]*Player)
	c.playerOrder = nil
	c.areas = make(map[string]*ConversationArea)
	c.areaOrder = nil
}

// broadcast pushes one event to every session, in controller order.
func (c *Controller) broadcast(ev protocol.EventMsg) {
	c.broadcastExcept(ev, "")
}

// broadcastExcept skips the session holding exceptToken.
func (c *Controller) broadcastExcept(ev protocol.EventMsg, exceptToken string) {
	c.eventSeq++
	if c.eventLogger != nil {
		_ = c.eventLogger.WriteEvent(EventLogEntry{Seq: c.eventSeq, TownID: c.cfg.ID, Event: ev})
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for token, sess := range c.sessions {
		if token == exceptToken {
			continue
		}
		sendLatest(sess.Out, b)
	}
}

func (c *Controller) reply(ch chan []byte, ack protocol.AckMsg) {
	if _, ok := c.liveOuts[ch]; !ok {
		return
	}
	b, err := json.Marshal(ack)
	if err != nil {
		return
	}
	sendLatest(ch, b)
}

// sendLatest enqueues without ever blocking the loop: when the session's
// buffer is full the oldest entry is dropped so the newest state wins.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func (c *Controller) playerInfos() []protocol.PlayerInfo {
	out := make([]protocol.PlayerInfo, 0, len(c.playerOrder))
	for _, id := range c.playerOrder {
		if p := c.players[id]; p != nil {
			out = append(out, p.Info())
		}
	}
	return out
}

func (c *Controller) areaInfos() []protocol.AreaInfo {
	out := make([]protocol.AreaInfo, 0, len(c.areaOrder))
	for _, label := range c.areaOrder {
		if a := c.areas[label]; a != nil {
			out = append(out, a.Info())
		}
	}
	return out
}
