package app

import "log"

// Hub fans individualized snapshots out to every connected participant and
// prunes participants whose connection has failed. Removal happens before the
// method returns, so any completion check that follows sees correct
// membership.
type Hub struct{}

func NewHub() *Hub {
	return &Hub{}
}

// broadcastLocked must be called with the game lock held. When a send fails
// the participant is removed and, because membership changed, the remaining
// clients are broadcast to again with recomputed views.
func (h *Hub) broadcastLocked(g *Game, reveal bool) {
	for {
		var dead []string
		for id, p := range g.participants {
			if err := p.conn.Send(g.snapshotLocked(id, reveal)); err != nil {
				dead = append(dead, id)
			}
		}
		if len(dead) == 0 {
			return
		}
		for _, id := range dead {
			log.Printf("dropping participant %s: send failed", id)
			g.removeParticipantLocked(id)
		}
	}
}
