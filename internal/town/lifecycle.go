package town

import "github.com/neu-cs4530/team-project-6l/internal/protocol"

func (c *Controller) handleJoin(req JoinRequest) {
	p := &Player{
		ID:       NewPlayerID(c.nextPlayerNum.Add(1)),
		UserName: req.UserName,
		Avatar:   req.Avatar,
		Location: c.cfg.Spawn,
	}
	token := NewSessionToken()
	sess := &Session{Token: token, Player: p, Out: req.Out}

	c.players[p.ID] = p
	c.playerOrder = append(c.playerOrder, p.ID)
	c.sessions[token] = sess
	c.liveOuts[req.Out] = struct{}{}

	// The spawn point may already lie inside an area.
	c.reassignPlayer(p)

	info := p.Info()
	ev := protocol.NewEvent(protocol.EvPlayerJoined)
	ev.Player = &info
	c.broadcastExcept(ev, token)

	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			TownID:          c.cfg.ID,
			FriendlyName:    c.friendlyName,
			SessionToken:    token,
			PlayerID:        p.ID,
			Players:         c.playerInfos(),
			Areas:           c.areaInfos(),
		}}
	}
}

// handleLeave is idempotent: an unknown token (already left, or never
// joined) is a no-op so transport teardown can race late messages safely.
func (c *Controller) handleLeave(token string) {
	sess := c.sessions[token]
	if sess == nil {
		return
	}
	delete(c.sessions, token)

	p := sess.Player
	delete(c.players, p.ID)
	for i, id := range c.playerOrder {
		if id == p.ID {
			c.playerOrder = append(c.playerOrder[:i], c.playerOrder[i+1:]...)
			break
		}
	}
	if p.ConversationLabel != "" {
		if a := c.areas[p.ConversationLabel]; a != nil {
			a.removeOccupant(p.ID)
		}
	}

	ev := protocol.NewEvent(protocol.EvPlayerLeft)
	ev.PlayerID = p.ID
	c.broadcast(ev)

	delete(c.liveOuts, sess.Out)
	close(sess.Out)
}
