/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// PlayerView is a player as shown to admins and to the player itself.
type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Score  int    `json:"score"`
	Locked bool   `json:"locked"`
	Click  *Click `json:"click"`
}

// ScoreEntry is a player as shown to everyone: no click position.
type ScoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// PublicRound carries only what players may know about a round. The
// target appears only while the admin shows it.
type PublicRound struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title,omitempty"`
	Question        string    `json:"question,omitempty"`
	ImageURL        string    `json:"imageUrl"`
	VisibleMs       int64     `json:"visibleMs"`
	ClickRadiusPct  float64   `json:"clickRadiusPct"`
	StartedAt       time.Time `json:"startedAt"`
	AllowAt         time.Time `json:"allowAt"`
	Phase           Phase     `json:"phase"`
	Revealed        bool      `json:"revealed"`
	Judged          bool      `json:"judged"`
	QuestionVisible bool      `json:"questionVisible"`
	Target          *Target   `json:"target,omitempty"`
}

type AdminState struct {
	Players       []PlayerView   `json:"players"`
	Round         *Round         `json:"round"`
	Playlist      []RoundConfig  `json:"playlist"`
	PlaylistIndex int            `json:"playlistIndex"`
	Volume        float64        `json:"volume"`
	RoomCode      string         `json:"roomCode"`
	History       []HistoryEntry `json:"history"`
}

type PlayerState struct {
	You        PlayerView   `json:"you"`
	Round      *PublicRound `json:"round"`
	Scoreboard []ScoreEntry `json:"scoreboard"`
	Volume     float64      `json:"volume"`
}

func viewOf(p *Player) PlayerView {
	v := PlayerView{
		ID:     p.ID,
		Name:   p.Name,
		Color:  p.hex(),
		Score:  p.Score,
		Locked: p.Locked,
	}
	if p.Click != nil {
		c := *p.Click
		v.Click = &c
	}
	return v
}

// AdminState is the full projection, target and every click included.
func (g *Game) AdminState() AdminState {
	players := make([]PlayerView, 0, g.players.len())
	for _, p := range g.players.list() {
		players = append(players, viewOf(p))
	}

	var round *Round
	if r, ok := g.Round(); ok {
		round = &r
	}

	items, index := g.Playlist()

	return AdminState{
		Players:       players,
		Round:         round,
		Playlist:      items,
		PlaylistIndex: index,
		Volume:        g.volume,
		RoomCode:      g.roomCode,
		History:       g.History(),
	}
}

// PlayerState is the projection for a single player: its own click,
// never anyone else's.
func (g *Game) PlayerState(connID string) (PlayerState, bool) {
	p, ok := g.players.get(connID)
	if !ok {
		return PlayerState{}, false
	}

	return PlayerState{
		You:        viewOf(p),
		Round:      g.publicRound(),
		Scoreboard: g.Scoreboard(),
		Volume:     g.volume,
	}, true
}

// Scoreboard lists players by score, highest first, then by name.
func (g *Game) Scoreboard() []ScoreEntry {
	out := make([]ScoreEntry, 0, g.players.len())
	for _, p := range g.players.list() {
		out = append(out, ScoreEntry{
			ID:    p.ID,
			Name:  p.Name,
			Color: p.hex(),
			Score: p.Score,
		})
	}

	slices.SortStableFunc(out, func(a, b ScoreEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return out
}

func (g *Game) publicRound() *PublicRound {
	r := g.round
	if r == nil {
		return nil
	}

	pr := &PublicRound{
		ID:              r.ID,
		Title:           r.Title,
		ImageURL:        r.ImageURL,
		VisibleMs:       r.VisibleMs,
		ClickRadiusPct:  r.ClickRadiusPct,
		StartedAt:       r.StartedAt,
		AllowAt:         r.AllowAt,
		Phase:           r.Phase,
		Revealed:        r.Revealed,
		Judged:          r.Judged,
		QuestionVisible: r.QuestionVisible,
	}

	if r.QuestionVisible {
		pr.Question = r.Question
	}

	if r.TargetVisible {
		t := r.Target
		pr.Target = &t
	}

	return pr
}

// sync recomputes and pushes both projections in full.
func (g *Game) sync() {
	g.syncAdmins()
	g.syncPlayers()
}

func (g *Game) syncAdmins() {
	g.out.Admins(Event{Type: EventAdminState, Payload: g.AdminState()})
}

func (g *Game) syncPlayers() {
	for _, p := range g.players.list() {
		st, _ := g.PlayerState(p.ID)
		g.out.Send(p.ID, Event{Type: EventPlayerState, Payload: st})
	}
}

func (g *Game) broadcastScoreboard() {
	g.out.Broadcast(Event{Type: EventScoreboard, Payload: g.Scoreboard()})
}

// Clicks returns a copy of the active round's clicks keyed by player.
func (g *Game) Clicks() map[string]Click {
	if g.round == nil {
		return nil
	}
	return maps.Clone(g.round.Clicks)
}
