/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"maps"
	"math"
	"slices"
	"time"
)

// hitEpsilon absorbs float error so a click exactly on the boundary hits.
const hitEpsilon = 1e-9

// DistancePct is the Euclidean distance between c and t's center, in
// percent of the normalized image space (0.05 -> 5).
func DistancePct(c Click, t Target) float64 {
	return math.Hypot(c.X-t.X, c.Y-t.Y) * 100
}

// Hit reports whether c lies within t's tolerance radius, boundary included.
func Hit(c Click, t Target) bool {
	return DistancePct(c, t) <= t.RPct+hitEpsilon
}

// HistoryEntry records one score change. Entries are never rewritten.
type HistoryEntry struct {
	RoundID  int64     `json:"roundId"`
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Delta    int       `json:"delta"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// Ledger is the append-only score history.
type Ledger struct {
	entries []HistoryEntry
}

func (l *Ledger) append(e HistoryEntry) {
	l.entries = append(l.entries, e)
}

// Recent returns a copy of the newest n entries, oldest first.
func (l *Ledger) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	return slices.Clone(l.entries[len(l.entries)-n:])
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// JudgeResult is what Judge decided.
type JudgeResult struct {
	RoundID int64
	Winners []string
}

// Judge scores every recorded click of the active round against its
// target. A round can be judged once; judging also reveals it.
func (g *Game) Judge() (JudgeResult, error) {
	r := g.round
	if r == nil {
		return JudgeResult{}, ErrNoRound
	}

	if r.Judged {
		return JudgeResult{}, ErrAlreadyJudged
	}

	now := g.clock.Now()
	winners := make([]string, 0, len(r.Clicks))

	for _, pid := range slices.Sorted(maps.Keys(r.Clicks)) {
		p, ok := g.players.get(pid)
		if !ok {
			continue
		}

		if !Hit(r.Clicks[pid], r.Target) {
			continue
		}

		p.Score += g.settings.Reward
		winners = append(winners, pid)

		g.ledger.append(HistoryEntry{
			RoundID:  r.ID,
			PlayerID: pid,
			Name:     p.Name,
			Delta:    g.settings.Reward,
			Reason:   "hit",
			At:       now,
		})
	}

	r.Judged = true
	r.Revealed = true
	r.Phase = PhaseJudged

	g.logf("QUIZ: Round %d judged, %d of %d clicks hit", r.ID, len(winners), len(r.Clicks))

	g.out.Broadcast(Event{Type: EventJudged, Payload: JudgedPayload{
		RoundID:        r.ID,
		Winners:        winners,
		Clicks:         maps.Clone(r.Clicks),
		ClickRadiusPct: r.ClickRadiusPct,
		Target:         r.Target,
	}})

	g.sync()
	g.broadcastScoreboard()

	return JudgeResult{RoundID: r.ID, Winners: winners}, nil
}

// History returns the newest entries up to the configured limit.
func (g *Game) History() []HistoryEntry {
	return g.ledger.Recent(g.settings.HistoryLimit)
}
