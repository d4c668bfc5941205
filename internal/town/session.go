package town

import (
	"fmt"

	"github.com/google/uuid"
)

// Session binds an opaque token to exactly one player and one outbound
// transport queue. Sessions are created and destroyed only by the
// controller loop; the Out channel is closed on leave so the transport's
// writer goroutine terminates.
type Session struct {
	Token  string
	Player *Player
	Out    chan []byte
}

func NewPlayerID(idNum uint64) string {
	return fmt.Sprintf("P%d", idNum)
}

// NewSessionToken returns an opaque unguessable token.
func NewSessionToken() string {
	return uuid.NewString()
}
