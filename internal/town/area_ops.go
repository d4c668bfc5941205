package town

import (
	"strings"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
)

func (c *Controller) handleAreaCreate(sess *Session, msg protocol.CommandMsg, replyTo chan []byte) {
	label := strings.TrimSpace(msg.Label)
	if label == "" {
		c.ackTo(replyTo, msg, false, protocol.ErrValidation, "empty area label")
		return
	}
	if msg.BoundingBox == nil || msg.BoundingBox.Width <= 0 || msg.BoundingBox.Height <= 0 {
		c.ackTo(replyTo, msg, false, protocol.ErrValidation, "bounding box must have positive width and height")
		return
	}
	if _, exists := c.areas[label]; exists {
		c.ackTo(replyTo, msg, false, protocol.ErrValidation, "area label already in use")
		return
	}

	a := &ConversationArea{Label: label, Topic: msg.Topic, Box: *msg.BoundingBox}
	c.areas[label] = a
	c.areaOrder = append(c.areaOrder, label)

	// The new box may capture players standing inside it, including players
	// pulled out of a larger overlapping area.
	moved := c.reassignAll()

	ev := protocol.NewEvent(protocol.EvAreaCreated)
	info := a.Info()
	ev.Area = &info
	c.broadcast(ev)
	c.broadcastMoves(moved)

	c.ackTo(replyTo, msg, true, "", "")
}

func (c *Controller) handleAreaUpdate(sess *Session, msg protocol.CommandMsg, replyTo chan []byte) {
	a := c.areas[msg.Label]
	if a == nil {
		c.ackTo(replyTo, msg, false, protocol.ErrNotFound, "no area with that label")
		return
	}
	a.Topic = msg.Topic

	ev := protocol.NewEvent(protocol.EvAreaUpdated)
	info := a.Info()
	ev.Area = &info
	c.broadcast(ev)

	c.ackTo(replyTo, msg, true, "", "")
}

func (c *Controller) handleAreaDestroy(sess *Session, msg protocol.CommandMsg, replyTo chan []byte) {
	a := c.areas[msg.Label]
	if a == nil {
		c.ackTo(replyTo, msg, false, protocol.ErrNotFound, "no area with that label")
		return
	}
	delete(c.areas, a.Label)
	for i, label := range c.areaOrder {
		if label == a.Label {
			c.areaOrder = append(c.areaOrder[:i], c.areaOrder[i+1:]...)
			break
		}
	}

	// Former occupants lose the label; some may fall into an overlapping
	// area that was previously shadowed by this one.
	var moved []*Player
	for _, id := range a.OccupantsByID {
		p := c.players[id]
		if p == nil {
			continue
		}
		p.ConversationLabel = ""
		if c.reassignPlayer(p) {
			moved = append(moved, p)
		}
	}

	ev := protocol.NewEvent(protocol.EvAreaDestroyed)
	ev.Label = a.Label
	c.broadcast(ev)
	c.broadcastMoves(moved)

	c.ackTo(replyTo, msg, true, "", "")
}

// reassignAll recomputes membership for every player, in join order, and
// returns the players whose membership changed.
func (c *Controller) reassignAll() []*Player {
	var moved []*Player
	for _, id := range c.playerOrder {
		p := c.players[id]
		if p == nil {
			continue
		}
		if c.reassignPlayer(p) {
			moved = append(moved, p)
		}
	}
	return moved
}

// broadcastMoves announces membership changes that were side effects of an
// area lifecycle change (not of the player's own movement).
func (c *Controller) broadcastMoves(moved []*Player) {
	for _, p := range moved {
		loc := p.Location
		ev := protocol.NewEvent(protocol.EvPlayerMoved)
		ev.PlayerID = p.ID
		ev.Location = &loc
		ev.ConversationLabel = p.ConversationLabel
		c.broadcast(ev)
	}
}

func (c *Controller) ackTo(replyTo chan []byte, msg protocol.CommandMsg, accepted bool, code, detail string) {
	if replyTo == nil {
		return
	}
	c.reply(replyTo, protocol.NewAck(ackFor(msg), accepted, code, detail))
}
