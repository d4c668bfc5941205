package protocol

// Event names carried by EventMsg.Event.
const (
	EvPlayerJoined  = "PLAYER_JOINED"
	EvPlayerMoved   = "PLAYER_MOVED"
	EvPlayerLeft    = "PLAYER_LEFT"
	EvAreaCreated   = "AREA_CREATED"
	EvAreaUpdated   = "AREA_UPDATED"
	EvAreaDestroyed = "AREA_DESTROYED"
	EvTownClosing   = "TOWN_CLOSING"
)

// EVENT (server -> client): one entry of a session's ordered broadcast
// stream. Only the fields relevant to the named event are set.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Event           string `json:"event"`

	// PLAYER_JOINED
	Player *PlayerInfo `json:"player,omitempty"`

	// PLAYER_MOVED / PLAYER_LEFT
	PlayerID          string    `json:"player_id,omitempty"`
	Location          *Location `json:"location,omitempty"`
	ConversationLabel string    `json:"conversation_label,omitempty"`

	// AREA_CREATED / AREA_UPDATED
	Area *AreaInfo `json:"area,omitempty"`

	// AREA_DESTROYED
	Label string `json:"label,omitempty"`
}

func NewEvent(event string) EventMsg {
	return EventMsg{Type: TypeEvent, ProtocolVersion: Version, Event: event}
}
