package town

import "github.com/neu-cs4530/team-project-6l/internal/protocol"

// handleMove overwrites the player's location and recomputes area
// membership. Grouping changes ride on the PLAYER_MOVED event itself; there
// is no separate area-diff event. The mover receives the event too.
func (c *Controller) handleMove(sess *Session, msg protocol.CommandMsg) {
	if msg.Location == nil || !protocol.IsDirection(msg.Location.Rotation) {
		return
	}
	p := sess.Player
	p.Location = *msg.Location
	c.reassignPlayer(p)

	loc := p.Location
	ev := protocol.NewEvent(protocol.EvPlayerMoved)
	ev.PlayerID = p.ID
	ev.Location = &loc
	ev.ConversationLabel = p.ConversationLabel
	c.broadcast(ev)
}
