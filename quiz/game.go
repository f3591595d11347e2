/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
)

// Game is the single shared quiz state. It is not safe for concurrent
// use: every call, including the functions handed to the dispatch
// option, must happen on one goroutine.
type Game struct {
	settings Settings
	clock    clockwork.Clock
	out      Outbox
	logf     func(format string, args ...any)
	dispatch func(func())

	players  *Registry
	waiting  map[string]struct{}
	round    *Round
	playlist *Playlist
	ledger   *Ledger

	volume   float64
	roomCode string

	lastRoundID int64
	timer       clockwork.Timer

	initial []RoundConfig
}

type Option func(*Game)

func WithSettings(s Settings) Option {
	return func(g *Game) { g.settings = s }
}

func WithClock(c clockwork.Clock) Option {
	return func(g *Game) { g.clock = c }
}

func WithLogf(f func(format string, args ...any)) Option {
	return func(g *Game) { g.logf = f }
}

// WithDispatch sets how timer callbacks get back onto the goroutine that
// owns the Game. The default calls them inline.
func WithDispatch(f func(func())) Option {
	return func(g *Game) { g.dispatch = f }
}

func WithRoomCode(code string) Option {
	return func(g *Game) { g.roomCode = strings.TrimSpace(code) }
}

func WithPlaylist(items []RoundConfig) Option {
	return func(g *Game) { g.initial = items }
}

func NewGame(out Outbox, opts ...Option) *Game {
	g := &Game{
		settings: DefaultSettings(),
		clock:    clockwork.NewRealClock(),
		out:      out,
		logf:     func(string, ...any) {},
		dispatch: func(f func()) { f() },
		playlist: newPlaylist(),
		waiting:  make(map[string]struct{}),
		ledger:   &Ledger{},
		volume:   0.5,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.players = newRegistry(g.settings.MaxNameLength)

	if len(g.initial) > 0 {
		if err := g.loadPlaylist(g.initial); err != nil {
			g.logf("WARN: Discarding startup playlist: %v", err)
		}
		g.initial = nil
	}

	return g
}

// Close stops any pending blackout timer.
func (g *Game) Close() {
	g.stopTimer()
}

// Connect handles a new player connection. Without a room code the
// player is registered immediately; otherwise it must Join first.
func (g *Game) Connect(connID string) {
	if g.roomCode != "" {
		g.waiting[connID] = struct{}{}
		g.out.Send(connID, Event{Type: EventJoinRequired, Payload: JoinRequiredPayload{
			Round:  g.publicRound(),
			Volume: g.volume,
		}})
		return
	}

	g.Register(connID)
}

// ConnectAdmin pushes the current admin projection to the admin group.
func (g *Game) ConnectAdmin(string) {
	g.syncAdmins()
}

// Register adds a player with a generated name and greets it.
func (g *Game) Register(connID string) *Player {
	p := g.players.register(connID)

	g.out.Send(connID, Event{Type: EventHello, Payload: g.hello(p)})
	g.sync()
	g.broadcastScoreboard()

	return p
}

// Join is the gated variant of Register.
func (g *Game) Join(connID, name, code string) (*Player, error) {
	name = g.players.cleanName(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return nil, fmt.Errorf("%w: name and room code are required", ErrInvalidInput)
	}

	if code != g.roomCode {
		return nil, ErrWrongCode
	}

	p, existed := g.players.get(connID)
	if !existed {
		p = g.players.register(connID)
	}
	p.Name = name
	delete(g.waiting, connID)

	g.out.Send(connID, Event{Type: EventJoinOK, Payload: g.hello(p)})
	g.sync()
	g.broadcastScoreboard()

	return p, nil
}

// SetName never fails; empty names leave the current one in place.
func (g *Game) SetName(connID, raw string) error {
	if _, ok := g.players.get(connID); !ok {
		return ErrUnknownPlayer
	}

	if g.players.setName(connID, raw) {
		g.sync()
		g.broadcastScoreboard()
	}

	return nil
}

// Remove drops a player and any click it made in the active round.
// Removing an unknown id does nothing.
func (g *Game) Remove(connID string) {
	delete(g.waiting, connID)

	if !g.players.remove(connID) {
		return
	}

	if g.round != nil {
		delete(g.round.Clicks, connID)
	}

	g.sync()
	g.broadcastScoreboard()
}

// Player returns a copy of the player record.
func (g *Game) Player(connID string) (Player, bool) {
	p, ok := g.players.get(connID)
	if !ok {
		return Player{}, false
	}

	cp := *p
	if p.Click != nil {
		c := *p.Click
		cp.Click = &c
	}

	return cp, true
}

// Joined reports whether connID is a registered player.
func (g *Game) Joined(connID string) bool {
	_, ok := g.players.get(connID)
	return ok
}

// SetVolume clamps v into [0,1] and announces it to everyone.
func (g *Game) SetVolume(v float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	g.volume = math.Max(0, math.Min(1, v))

	g.out.Broadcast(Event{Type: EventVolume, Payload: VolumePayload{Volume: g.volume}})
	g.syncAdmins()

	return g.volume
}

func (g *Game) Volume() float64 {
	return g.volume
}

// SetRoomCode replaces the join code. Players already joined are
// unaffected. An empty code disables gating and registers every
// connection still waiting to join.
func (g *Game) SetRoomCode(code string) {
	g.roomCode = strings.TrimSpace(code)

	g.out.Broadcast(Event{Type: EventRoomCodeChange, Payload: RoomCodePayload{Required: g.roomCode != ""}})
	g.syncAdmins()

	if g.roomCode != "" {
		return
	}

	for _, id := range slices.Sorted(maps.Keys(g.waiting)) {
		delete(g.waiting, id)
		g.Register(id)
	}
}

func (g *Game) RoomCode() string {
	return g.roomCode
}

func (g *Game) hello(p *Player) HelloPayload {
	return HelloPayload{
		You:    viewOf(p),
		Round:  g.publicRound(),
		Volume: g.volume,
	}
}
