/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"maps"
	"time"
)

// Phase is the lifecycle position of the active round.
type Phase string

const (
	PhaseNoRound     Phase = "no_round"
	PhaseVisible     Phase = "visible"      // image shown, clicks rejected
	PhaseClickWindow Phase = "click_window" // blackout elapsed, clicks accepted
	PhaseRevealed    Phase = "revealed"
	PhaseJudged      Phase = "judged"
)

// Round is the full, admin-only view of the active round.
type Round struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title,omitempty"`
	Question        string           `json:"question,omitempty"`
	ImageURL        string           `json:"imageUrl"`
	VisibleMs       int64            `json:"visibleMs"`
	ClickRadiusPct  float64          `json:"clickRadiusPct"`
	Target          Target           `json:"target"`
	StartedAt       time.Time        `json:"startedAt"`
	AllowAt         time.Time        `json:"allowAt"`
	Phase           Phase            `json:"phase"`
	Revealed        bool             `json:"revealed"`
	Judged          bool             `json:"judged"`
	QuestionVisible bool             `json:"questionVisible"`
	TargetVisible   bool             `json:"targetVisible"`
	Clicks          map[string]Click `json:"clicks"`
}

// Phase returns PhaseNoRound when no round is active.
func (g *Game) Phase() Phase {
	if g.round == nil {
		return PhaseNoRound
	}
	return g.round.Phase
}

// Round returns a copy of the active round.
func (g *Game) Round() (Round, bool) {
	if g.round == nil {
		return Round{}, false
	}

	r := *g.round
	r.Clicks = maps.Clone(g.round.Clicks)

	return r, true
}

// StartRound replaces any active round with a new one built from cfg.
// A missing image asset is logged, never fatal.
func (g *Game) StartRound(cfg RoundConfig) (Round, error) {
	norm, err := g.settings.normalize(cfg)
	if err != nil {
		return Round{}, err
	}

	if assetMissing(g.settings.StaticRoot, norm.ImageURL) {
		g.logf("WARN: Image %q not found under %q", norm.ImageURL, g.settings.StaticRoot)
	}

	g.stopTimer()
	g.players.unlockAll()

	now := g.clock.Now()
	visible := time.Duration(*norm.VisibleMs) * time.Millisecond

	r := &Round{
		ID:             g.nextRoundID(now),
		Title:          norm.Title,
		Question:       norm.Question,
		ImageURL:       norm.ImageURL,
		VisibleMs:      *norm.VisibleMs,
		ClickRadiusPct: *norm.ClickRadiusPct,
		Target:         *norm.Target,
		StartedAt:      now,
		AllowAt:        now.Add(visible),
		Phase:          PhaseVisible,
		Clicks:         make(map[string]Click),
	}
	g.round = r

	g.logf("QUIZ: Round %d started with %s (visible %s)", r.ID, r.ImageURL, visible)

	g.out.Broadcast(Event{Type: EventRoundStarted, Payload: RoundStartedPayload{
		RoundID:        r.ID,
		Title:          r.Title,
		ImageURL:       r.ImageURL,
		VisibleMs:      r.VisibleMs,
		ClickRadiusPct: r.ClickRadiusPct,
		AllowAt:        r.AllowAt.UnixMilli(),
	}})

	if visible <= 0 {
		g.openClickWindow()
	} else {
		id := r.ID
		g.timer = g.clock.AfterFunc(visible, func() {
			g.dispatch(func() { g.OpenClickWindow(id) })
		})
	}

	g.sync()

	return *r, nil
}

// OpenClickWindow is the blackout timer's callback. It does nothing
// unless roundID still names the active round in its visible phase.
func (g *Game) OpenClickWindow(roundID int64) bool {
	if g.round == nil || g.round.ID != roundID {
		g.logf("QUIZ: Ignoring stale blackout timer for round %d", roundID)
		return false
	}

	if g.round.Phase != PhaseVisible {
		return false
	}

	g.openClickWindow()
	g.sync()

	return true
}

func (g *Game) openClickWindow() {
	g.round.Phase = PhaseClickWindow
	g.out.Broadcast(Event{Type: EventClicksAllowed, Payload: ClicksAllowedPayload{RoundID: g.round.ID}})
}

// AcceptClick locks a player's single guess for the active round.
// Coordinates outside [0,1] are clamped.
func (g *Game) AcceptClick(connID string, x, y float64) (Click, error) {
	p, ok := g.players.get(connID)
	if !ok {
		return Click{}, ErrUnknownPlayer
	}

	r := g.round
	if r == nil {
		return Click{}, ErrNoRound
	}

	if g.clock.Now().Before(r.AllowAt) {
		return Click{}, ErrNotYetAllowed
	}

	if _, dup := r.Clicks[connID]; dup || p.Locked {
		return Click{}, ErrAlreadyLocked
	}

	// The timer event may still be queued behind this click.
	if r.Phase == PhaseVisible {
		g.stopTimer()
		g.openClickWindow()
	}

	c := Click{X: clamp01(x), Y: clamp01(y), Color: p.hex()}

	p.Locked = true
	p.Click = &c
	r.Clicks[connID] = c

	g.out.Send(connID, Event{Type: EventPlayerLocked, Payload: c})
	g.sync()

	return c, nil
}

// RevealClicks discloses each player's own click to that player only,
// and every click to the admins. Calling it again re-sends the same data.
func (g *Game) RevealClicks() error {
	r := g.round
	if r == nil {
		return ErrNoRound
	}

	r.Revealed = true
	if r.Phase == PhaseVisible || r.Phase == PhaseClickWindow {
		r.Phase = PhaseRevealed
	}

	for _, p := range g.players.list() {
		var own *Click
		if c, ok := r.Clicks[p.ID]; ok {
			own = &c
		}

		g.out.Send(p.ID, Event{Type: EventReveal, Payload: RevealPayload{
			RoundID:        r.ID,
			Click:          own,
			ClickRadiusPct: r.ClickRadiusPct,
		}})
	}

	g.out.Admins(Event{Type: EventReveal, Payload: AdminRevealPayload{
		RoundID:        r.ID,
		Clicks:         maps.Clone(r.Clicks),
		ClickRadiusPct: r.ClickRadiusPct,
	}})

	g.sync()

	return nil
}

// Reset ends the active round without touching scores or the playlist.
func (g *Game) Reset() {
	g.stopTimer()

	var id int64
	if g.round != nil {
		id = g.round.ID
		g.logf("QUIZ: Round %d reset", id)
	}
	g.round = nil
	g.players.unlockAll()

	g.out.Broadcast(Event{Type: EventReset, Payload: ResetPayload{RoundID: id}})
	g.sync()
}

func (g *Game) ShowQuestion() error {
	return g.setQuestionVisible(true)
}

func (g *Game) HideQuestion() error {
	return g.setQuestionVisible(false)
}

func (g *Game) setQuestionVisible(visible bool) error {
	r := g.round
	if r == nil {
		return ErrNoRound
	}
	r.QuestionVisible = visible

	if visible {
		g.out.Broadcast(Event{Type: EventQuestionShow, Payload: QuestionPayload{RoundID: r.ID, Question: r.Question}})
	} else {
		g.out.Broadcast(Event{Type: EventQuestionHide, Payload: QuestionPayload{RoundID: r.ID}})
	}
	g.sync()

	return nil
}

func (g *Game) ShowTarget() error {
	return g.setTargetVisible(true)
}

func (g *Game) HideTarget() error {
	return g.setTargetVisible(false)
}

func (g *Game) setTargetVisible(visible bool) error {
	r := g.round
	if r == nil {
		return ErrNoRound
	}
	r.TargetVisible = visible

	if visible {
		t := r.Target
		g.out.Broadcast(Event{Type: EventTargetShow, Payload: TargetPayload{RoundID: r.ID, Target: &t}})
	} else {
		g.out.Broadcast(Event{Type: EventTargetHide, Payload: TargetPayload{RoundID: r.ID}})
	}
	g.sync()

	return nil
}

// nextRoundID is the start time in milliseconds, bumped past the
// previous id if the clock has not moved.
func (g *Game) nextRoundID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= g.lastRoundID {
		id = g.lastRoundID + 1
	}
	g.lastRoundID = id

	return id
}

func (g *Game) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
