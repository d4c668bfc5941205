package town

// Metrics is a point-in-time view published after every processed event so
// readers (town listing, /metrics) never enter the loop.
type Metrics struct {
	Players    int
	Sessions   int
	Areas      int
	InboxDepth int
}

func (c *Controller) publishMetrics() {
	c.metrics.Store(Metrics{
		Players:    len(c.players),
		Sessions:   len(c.sessions),
		Areas:      len(c.areas),
		InboxDepth: len(c.inbox),
	})
}

func (c *Controller) Metrics() Metrics {
	m, _ := c.metrics.Load().(Metrics)
	return m
}

// Occupancy is the live player count, read lock-free.
func (c *Controller) Occupancy() int { return c.Metrics().Players }
