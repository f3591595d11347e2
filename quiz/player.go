/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"strings"
)

// Palette holds the display colors handed out round-robin on registration.
var Palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
	"#bcf60c", "#fabebe", "#008080", "#9a6324",
}

// Click is a locked guess in normalized image coordinates.
type Click struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

// Player is the server-side record of one connected player.
type Player struct {
	ID     string
	Name   string
	Color  int
	Score  int
	Locked bool
	Click  *Click
}

func (p *Player) hex() string {
	return Palette[p.Color%len(Palette)]
}

// Registry tracks connected players in registration order.
type Registry struct {
	players map[string]*Player
	order   []string
	maxName int
}

func newRegistry(maxName int) *Registry {
	return &Registry{
		players: make(map[string]*Player),
		maxName: maxName,
	}
}

// register creates a player for id, or returns the existing one.
func (r *Registry) register(id string) *Player {
	if p, ok := r.players[id]; ok {
		return p
	}

	p := &Player{
		ID:    id,
		Name:  defaultName(id),
		Color: len(r.players) % len(Palette),
	}
	r.players[id] = p
	r.order = append(r.order, id)

	return p
}

func (r *Registry) get(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// setName trims and truncates raw. Empty input keeps the current name.
func (r *Registry) setName(id, raw string) bool {
	p, ok := r.players[id]
	if !ok {
		return false
	}

	name := r.cleanName(raw)
	if name == "" || name == p.Name {
		return false
	}
	p.Name = name

	return true
}

func (r *Registry) cleanName(raw string) string {
	return strings.TrimSpace(truncate(strings.TrimSpace(raw), r.maxName))
}

// remove is a no-op for unknown ids.
func (r *Registry) remove(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}

	delete(r.players, id)

	dst := r.order[:0]
	for _, pid := range r.order {
		if pid != id {
			dst = append(dst, pid)
		}
	}
	r.order = dst

	return true
}

func (r *Registry) list() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

func (r *Registry) len() int {
	return len(r.players)
}

func (r *Registry) unlockAll() {
	for _, p := range r.players {
		p.Locked = false
		p.Click = nil
	}
}

func defaultName(id string) string {
	short := id
	if len(short) > 4 {
		short = short[:4]
	}
	return "Player " + short
}
