package town

import "github.com/neu-cs4530/team-project-6l/internal/protocol"

// ConversationArea groups the players standing inside its bounding box.
// OccupantsByID keeps detection order; the box is immutable after creation.
type ConversationArea struct {
	Label         string
	Topic         string
	Box           protocol.BoundingBox
	OccupantsByID []string
}

func (a *ConversationArea) Info() protocol.AreaInfo {
	occ := make([]string, len(a.OccupantsByID))
	copy(occ, a.OccupantsByID)
	return protocol.AreaInfo{
		Label:         a.Label,
		Topic:         a.Topic,
		BoundingBox:   a.Box,
		OccupantsByID: occ,
	}
}

func (a *ConversationArea) removeOccupant(playerID string) {
	for i, id := range a.OccupantsByID {
		if id == playerID {
			a.OccupantsByID = append(a.OccupantsByID[:i], a.OccupantsByID[i+1:]...)
			return
		}
	}
}

// resolveArea picks the area containing (x, y), resolving overlaps
// deterministically: smallest width*height wins, then the lexicographically
// smallest label. Returns nil when no area contains the point.
func (c *Controller) resolveArea(x, y float64) *ConversationArea {
	var best *ConversationArea
	for _, label := range c.areaOrder {
		a := c.areas[label]
		if a == nil || !a.Box.Contains(x, y) {
			continue
		}
		if best == nil {
			best = a
			continue
		}
		if a.Box.Area() < best.Box.Area() ||
			(a.Box.Area() == best.Box.Area() && a.Label < best.Label) {
			best = a
		}
	}
	return best
}

// reassignPlayer moves p between occupant lists so that its membership
// matches resolveArea for its current location. Reports whether the
// membership changed.
func (c *Controller) reassignPlayer(p *Player) bool {
	target := c.resolveArea(p.Location.X, p.Location.Y)
	newLabel := ""
	if target != nil {
		newLabel = target.Label
	}
	if newLabel == p.ConversationLabel {
		return false
	}
	if p.ConversationLabel != "" {
		if old := c.areas[p.ConversationLabel]; old != nil {
			old.removeOccupant(p.ID)
		}
	}
	if target != nil {
		target.OccupantsByID = append(target.OccupantsByID, p.ID)
	}
	p.ConversationLabel = newLabel
	return true
}
