package town

import "github.com/neu-cs4530/team-project-6l/internal/protocol"

// Player is an in-town movable entity. It is owned by the controller loop
// and must only be mutated from there. ConversationLabel is a weak
// reference: the label of the area currently containing the player, or ""
// when no area contains it.
type Player struct {
	ID                string
	UserName          string
	Avatar            string
	Location          protocol.Location
	ConversationLabel string
}

func (p *Player) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:                p.ID,
		UserName:          p.UserName,
		Avatar:            p.Avatar,
		Location:          p.Location,
		ConversationLabel: p.ConversationLabel,
	}
}
