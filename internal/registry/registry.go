package registry

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
	"github.com/neu-cs4530/team-project-6l/internal/town"
)

var (
	ErrNotFound = errors.New("town not found")
	ErrAuth     = errors.New("town update password mismatch")

	errIDTaken = errors.New("town id already registered")
)

const (
	DefaultFriendlyName = "New Town"

	shutdownTimeout = 3 * time.Second
)

// Runtime pairs a running controller with the registry-owned town metadata.
// The password never leaves the registry; listings expose id, name, and
// live occupancy only.
type Runtime struct {
	Controller   *town.Controller
	FriendlyName string
	IsPublic     bool

	password string
	cancel   context.CancelFunc
}

type TownListing struct {
	TownID           string `json:"town_id"`
	FriendlyName     string `json:"friendly_name"`
	CurrentOccupancy int    `json:"current_occupancy"`
}

// Config carries the per-town controller knobs every created town shares.
type Config struct {
	Spawn        protocol.Location
	SessionQueue int
	InboxSize    int
}

// EventLoggerFactory builds the optional per-town event journal. May be nil.
type EventLoggerFactory func(townID string) town.EventLogger

// Registry is the process-wide directory of towns. It is the only structure
// shared across towns; everything inside a town belongs to its controller.
type Registry struct {
	mu     sync.RWMutex
	towns  map[string]*Runtime
	order  []string
	closed bool

	baseCtx    context.Context
	cfg        Config
	newJournal EventLoggerFactory
	log        *zap.SugaredLogger
}

// New creates an empty registry. Controllers created through it run under
// ctx; canceling ctx stops every town loop.
func New(ctx context.Context, cfg Config, newJournal EventLoggerFactory, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Spawn.Rotation == "" {
		cfg.Spawn.Rotation = protocol.DirFront
	}
	return &Registry{
		towns:      make(map[string]*Runtime),
		baseCtx:    ctx,
		cfg:        cfg,
		newJournal: newJournal,
		log:        logger,
	}
}

// CreateTown registers a fresh town and returns its id and update password.
// An id collision is retried with a fresh id.
func (r *Registry) CreateTown(friendlyName string, isPublic bool) (townID, password string, err error) {
	for attempt := 0; ; attempt++ {
		townID, password, err = r.create(uuid.NewString(), friendlyName, isPublic)
		if !errors.Is(err, errIDTaken) || attempt >= 2 {
			return townID, password, err
		}
	}
}

// CreateTownWithID registers a town under a caller-chosen id (demo town
// bootstrap). Fails if the id is taken.
func (r *Registry) CreateTownWithID(id, friendlyName string, isPublic bool) (password string, err error) {
	_, password, err = r.create(id, friendlyName, isPublic)
	return password, err
}

func (r *Registry) create(id, friendlyName string, isPublic bool) (string, string, error) {
	if friendlyName == "" {
		friendlyName = DefaultFriendlyName
	}
	password := newUpdatePassword()

	ctl := town.New(town.Config{
		ID:           id,
		FriendlyName: friendlyName,
		Spawn:        r.cfg.Spawn,
		SessionQueue: r.cfg.SessionQueue,
		InboxSize:    r.cfg.InboxSize,
	})
	if r.newJournal != nil {
		ctl.SetEventLogger(r.newJournal(id))
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", "", errors.New("registry closed")
	}
	if _, taken := r.towns[id]; taken {
		r.mu.Unlock()
		return "", "", errIDTaken
	}
	ctx, cancel := context.WithCancel(r.baseCtx)
	r.towns[id] = &Runtime{
		Controller:   ctl,
		FriendlyName: friendlyName,
		IsPublic:     isPublic,
		password:     password,
		cancel:       cancel,
	}
	r.order = append(r.order, id)
	r.mu.Unlock()

	go func() {
		if err := ctl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Errorw("town loop stopped", "town_id", id, "error", err)
		}
	}()

	r.log.Infow("town created", "town_id", id, "friendly_name", friendlyName, "public", isPublic)
	return id, password, nil
}

// Get returns the controller for a town id.
func (r *Registry) Get(townID string) (*town.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.towns[townID]
	if !ok {
		return nil, false
	}
	return rt.Controller, true
}

// ListPublic returns publicly listed towns with live occupancy, in creation
// order.
func (r *Registry) ListPublic() []TownListing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TownListing, 0, len(r.order))
	for _, id := range r.order {
		rt := r.towns[id]
		if rt == nil || !rt.IsPublic {
			continue
		}
		out = append(out, TownListing{
			TownID:           id,
			FriendlyName:     rt.FriendlyName,
			CurrentOccupancy: rt.Controller.Occupancy(),
		})
	}
	return out
}

// UpdateTown changes the friendly name and/or public flag. Nil means leave
// the field alone. Wrong password mutates nothing.
func (r *Registry) UpdateTown(townID, password string, friendlyName *string, isPublic *bool) error {
	r.mu.Lock()
	rt, ok := r.towns[townID]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if rt.password != password {
		r.mu.Unlock()
		return ErrAuth
	}
	ctl := rt.Controller
	var rename string
	var doRename bool
	if friendlyName != nil && *friendlyName != "" {
		rt.FriendlyName = *friendlyName
		rename, doRename = *friendlyName, true
	}
	if isPublic != nil {
		rt.IsPublic = *isPublic
	}
	r.mu.Unlock()

	if doRename {
		ctx, cancel := context.WithTimeout(r.baseCtx, shutdownTimeout)
		defer cancel()
		if err := ctl.Rename(ctx, rename); err != nil && !errors.Is(err, town.ErrStopped) {
			return err
		}
	}
	return nil
}

// DeleteTown authenticates the update password, notifies every connected
// session that the town is closing, and tears the controller down. A wrong
// password leaves the town completely unchanged.
func (r *Registry) DeleteTown(townID, password string) error {
	r.mu.Lock()
	rt, ok := r.towns[townID]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if rt.password != password {
		r.mu.Unlock()
		return ErrAuth
	}
	delete(r.towns, townID)
	for i, id := range r.order {
		if id == townID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.baseCtx, shutdownTimeout)
	defer cancel()
	if err := rt.Controller.Shutdown(ctx); err != nil && !errors.Is(err, town.ErrStopped) {
		r.log.Warnw("town shutdown", "town_id", townID, "error", err)
	}
	rt.cancel()

	r.log.Infow("town deleted", "town_id", townID)
	return nil
}

// Close tears down every town. Used on server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	runtimes := make([]*Runtime, 0, len(r.towns))
	for _, rt := range r.towns {
		runtimes = append(runtimes, rt)
	}
	r.towns = make(map[string]*Runtime)
	r.order = nil
	r.mu.Unlock()

	for _, rt := range runtimes {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = rt.Controller.Shutdown(ctx)
		cancel()
		rt.cancel()
	}
}

// Len is the number of registered towns, public or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.towns)
}

func newUpdatePassword() string {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b[:])
}
