package protocol

// Facing directions for Location.Rotation.
const (
	DirFront = "front"
	DirBack  = "back"
	DirLeft  = "left"
	DirRight = "right"
)

func IsDirection(s string) bool {
	switch s {
	case DirFront, DirBack, DirLeft, DirRight:
		return true
	}
	return false
}

// Location is a player position as reported by and broadcast to clients.
type Location struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation string  `json:"rotation"`
	Moving   bool    `json:"moving"`
}

// BoundingBox is an axis-aligned rectangle. A point (x, y) is inside when
// box.X <= x < box.X+Width and box.Y <= y < box.Y+Height.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

func (b BoundingBox) Area() float64 { return b.Width * b.Height }

// PlayerInfo is the broadcast/snapshot view of a player.
type PlayerInfo struct {
	ID                string   `json:"id"`
	UserName          string   `json:"user_name"`
	Avatar            string   `json:"avatar,omitempty"`
	Location          Location `json:"location"`
	ConversationLabel string   `json:"conversation_label,omitempty"`
}

// AreaInfo is the broadcast/snapshot view of a conversation area.
type AreaInfo struct {
	Label         string      `json:"label"`
	Topic         string      `json:"topic,omitempty"`
	BoundingBox   BoundingBox `json:"bounding_box"`
	OccupantsByID []string    `json:"occupants_by_id"`
}

// JOIN (client -> server): the handshake message sent right after connecting.
type JoinMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	UserName        string `json:"user_name"`
	Avatar          string `json:"avatar,omitempty"`
}

// WELCOME (server -> client): session credentials plus a full town snapshot
// so the client can render current state without waiting for events.
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	TownID          string       `json:"town_id"`
	FriendlyName    string       `json:"friendly_name"`
	SessionToken    string       `json:"session_token"`
	PlayerID        string       `json:"player_id"`
	Players         []PlayerInfo `json:"players"`
	Areas           []AreaInfo   `json:"areas"`
}

// CommandMsg (client -> server): every post-join request. Type selects the
// command; unused fields stay zero. SessionToken is validated before any
// state is touched.
type CommandMsg struct {
	Type         string       `json:"type"`
	SessionToken string       `json:"session_token"`
	CommandID    string       `json:"command_id,omitempty"`
	Location     *Location    `json:"location,omitempty"`
	Label        string       `json:"label,omitempty"`
	Topic        string       `json:"topic,omitempty"`
	BoundingBox  *BoundingBox `json:"bounding_box,omitempty"`
}

// ACK (server -> client): synchronous result for a command that has one.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

func NewAck(ackFor string, accepted bool, code, message string) AckMsg {
	return AckMsg{
		Type:            TypeAck,
		ProtocolVersion: Version,
		AckFor:          ackFor,
		Accepted:        accepted,
		Code:            code,
		Message:         message,
	}
}
