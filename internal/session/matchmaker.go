package session

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/DoyleJ11/devine-backend/internal/engine"
	"github.com/DoyleJ11/devine-backend/internal/hub"
)

// Salons is the ordered pool of named rooms handed out before synthetic
// names.
var Salons = []string{
	"Salon Écarlate", "Salon Indigo", "Salon Turquoise", "Salon Citron Vert",
	"Salon Émeraude", "Salon Lavande", "Salon Safran", "Salon Cramoisi",
	"Salon Corail", "Salon Argent", "Salon Fraise", "Salon Mangue", "Salon Myrtille",
	"Salon Kiwi", "Salon Ananas", "Salon Cerise", "Salon Grenade", "Salon Pêche",
	"Salon Abricot", "Salon Banane", "Salon Galaxie", "Salon Crépuscule",
	"Salon Feu de Camp", "Salon Cascade", "Salon Neige Éternelle", "Salon Océan Pacifique",
	"Salon Forêt Tropicale", "Salon Aurore Boréale",
}

// Matchmaker picks where a player goes when the room they asked for cannot
// seat them.
type Matchmaker struct {
	hub  *hub.Hub
	pool []string
	draw func() int
}

func NewMatchmaker(h *hub.Hub, pool []string) *Matchmaker {
	return &Matchmaker{
		hub:  h,
		pool: pool,
		draw: func() int { return 1000 + rand.IntN(9000) },
	}
}

// Assign prefers, in order: an open room waiting for exactly this role, the
// first empty pool room, a fresh synthetic name. The caller still has to
// claim the seat and retry if someone beat it there.
func (m *Matchmaker) Assign(ctx context.Context, role engine.Role) (string, error) {
	rooms, err := m.hub.Rooms(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range rooms {
		occ, err := r.Occupancy(ctx)
		if err != nil {
			continue
		}
		seats := engine.State{GiverID: occ.GiverID, GuesserID: occ.GuesserID}
		if seats.Missing(role) && occ.Status != engine.StatusEnded {
			return occ.ID, nil
		}
	}

	for _, name := range m.pool {
		r, err := m.hub.Get(ctx, name)
		if err != nil {
			return "", err
		}
		if r == nil {
			return name, nil
		}
		occ, err := r.Occupancy(ctx)
		if err != nil || (occ.GiverID == "" && occ.GuesserID == "") {
			return name, nil
		}
	}

	return fmt.Sprintf("Salon %d", m.draw()), nil
}
