package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeJoin        = "JOIN"
	TypeWelcome     = "WELCOME"
	TypeAck         = "ACK"
	TypeEvent       = "EVENT"
	TypeMove        = "MOVE"
	TypeAreaCreate  = "AREA_CREATE"
	TypeAreaUpdate  = "AREA_UPDATE"
	TypeAreaDestroy = "AREA_DESTROY"
	TypeLeave       = "LEAVE"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// IsCommand reports whether a message type is an authenticated
// session command (anything a client may send after WELCOME).
func IsCommand(msgType string) bool {
	switch msgType {
	case TypeMove, TypeAreaCreate, TypeAreaUpdate, TypeAreaDestroy, TypeLeave:
		return true
	}
	return false
}
