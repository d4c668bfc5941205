package town

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
)

// ErrStopped is returned by Request* helpers when the controller loop is no
// longer running.
var ErrStopped = errors.New("town controller stopped")

type Config struct {
	ID           string
	FriendlyName string
	Spawn        protocol.Location
	SessionQueue int // per-session outbound buffer capacity
	InboxSize    int // command channel capacity
}

// JoinRequest asks the controller to admit a new player. The profile lookup
// has already happened by the time this is submitted; the controller's
// serialized section never blocks on external calls.
type JoinRequest struct {
	UserName string
	Avatar   string
	Out      chan []byte
	Resp     chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// CommandEnvelope is an authenticated post-join request. ReplyTo receives
// synchronous ACKs for commands that have one; it may be nil.
type CommandEnvelope struct {
	Token   string
	Msg     protocol.CommandMsg
	ReplyTo chan []byte
}

type renameRequest struct {
	Name string
	Resp chan struct{}
}

type snapshotRequest struct {
	Resp chan snapshotResponse
}

type snapshotResponse struct {
	Players []protocol.PlayerInfo
	Areas   []protocol.AreaInfo
}

type shutdownRequest struct {
	Resp chan struct{}
}

// EventLogger receives every broadcast event, in controller order.
// Implemented in internal/persistence/log.
type EventLogger interface {
	WriteEvent(entry EventLogEntry) error
}

type EventLogEntry struct {
	Seq    uint64            `json:"seq"`
	TownID string            `json:"town_id"`
	Event  protocol.EventMsg `json:"event"`
}

// Controller is the single authority for one town. All town state lives
// behind a single goroutine (Run); everything else talks to it over
// channels, so event handling is serialized per town while different towns
// proceed in parallel.
type Controller struct {
	cfg Config

	friendlyName string

	players     map[string]*Player
	playerOrder []string
	sessions    map[string]*Session
	areas       map[string]*ConversationArea
	areaOrder   []string

	// liveOuts guards replies: once a session leaves, its Out channel is
	// closed and must never be written again.
	liveOuts map[chan []byte]struct{}

	join     chan JoinRequest
	leave    chan string
	inbox    chan CommandEnvelope
	rename   chan renameRequest
	snapshot chan snapshotRequest
	shutdown chan shutdownRequest
	done     chan struct{}

	nextPlayerNum atomic.Uint64
	eventSeq      uint64

	eventLogger EventLogger
	metrics     atomic.Value // Metrics
}

func New(cfg Config) *Controller {
	if cfg.SessionQueue <= 0 {
		cfg.SessionQueue = 32
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 256
	}
	c := &Controller{
		cfg:          cfg,
		friendlyName: cfg.FriendlyName,
		players:      make(map[string]*Player),
		sessions:     make(map[string]*Session),
		areas:        make(map[string]*ConversationArea),
		liveOuts:     make(map[chan []byte]struct{}),
		join:         make(chan JoinRequest),
		leave:        make(chan string, 64),
		inbox:        make(chan CommandEnvelope, cfg.InboxSize),
		rename:       make(chan renameRequest),
		snapshot:     make(chan snapshotRequest),
		shutdown:     make(chan shutdownRequest),
		done:         make(chan struct{}),
	}
	c.metrics.Store(Metrics{})
	return c
}

func (c *Controller) ID() string { return c.cfg.ID }

// SetEventLogger must be called before Run.
func (c *Controller) SetEventLogger(l EventLogger) { c.eventLogger = l }

func (c *Controller) Join() chan<- JoinRequest      { return c.join }
func (c *Controller) Leave() chan<- string          { return c.leave }
func (c *Controller) Inbox() chan<- CommandEnvelope { return c.inbox }

// Done is closed when the loop has exited; senders select on it so they
// never block on a stopped town.
func (c *Controller) Done() <-chan struct{} { return c.done }

// SessionQueueSize is the outbound buffer capacity transports should use
// when allocating a session's Out channel.
func (c *Controller) SessionQueueSize() int { return c.cfg.SessionQueue }

// RequestSnapshot returns the current players and areas without joining.
func (c *Controller) RequestSnapshot(ctx context.Context) ([]protocol.PlayerInfo, []protocol.AreaInfo, error) {
	req := snapshotRequest{Resp: make(chan snapshotResponse, 1)}
	select {
	case c.snapshot <- req:
	case <-c.done:
		return nil, nil, ErrStopped
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	select {
	case resp := <-req.Resp:
		return resp.Players, resp.Areas, nil
	case <-c.done:
		return nil, nil, ErrStopped
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// Rename updates the friendly name used in subsequent WELCOMEs.
func (c *Controller) Rename(ctx context.Context, name string) error {
	req := renameRequest{Name: name, Resp: make(chan struct{}, 1)}
	select {
	case c.rename <- req:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.Resp:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown broadcasts TOWN_CLOSING, tears down every session, and stops the
// loop. Safe to call once; later calls return ErrStopped.
func (c *Controller) Shutdown(ctx context.Context) error {
	req := shutdownRequest{Resp: make(chan struct{}, 1)}
	select {
	case c.shutdown <- req:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.Resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
