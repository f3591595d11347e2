/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"fmt"
	"slices"
)

// Playlist is an ordered list of round configurations with a cursor.
// The cursor is -1 when the list is empty.
type Playlist struct {
	items []RoundConfig
	index int
}

func newPlaylist() *Playlist {
	return &Playlist{index: -1}
}

func (p *Playlist) replace(items []RoundConfig) {
	p.items = items
	p.index = -1
	if len(items) > 0 {
		p.index = 0
	}
}

func (p *Playlist) advance() (int, error) {
	if len(p.items) == 0 {
		return -1, ErrNoPlaylist
	}
	p.index = (p.index + 1) % len(p.items)

	return p.index, nil
}

func (p *Playlist) setIndex(i int) error {
	if len(p.items) == 0 {
		return ErrNoPlaylist
	}
	if i < 0 || i >= len(p.items) {
		return ErrIndexOutOfRange
	}
	p.index = i

	return nil
}

func (p *Playlist) current() (RoundConfig, error) {
	if len(p.items) == 0 {
		return RoundConfig{}, ErrNoPlaylist
	}
	if p.index < 0 || p.index >= len(p.items) {
		return RoundConfig{}, ErrIndexOutOfRange
	}
	return p.items[p.index], nil
}

// SetPlaylist replaces the whole playlist. Every item is normalized like
// a manual round; one bad item rejects the lot.
func (g *Game) SetPlaylist(items []RoundConfig) error {
	if err := g.loadPlaylist(items); err != nil {
		return err
	}

	g.logf("QUIZ: Playlist set with %d items", len(items))
	g.syncAdmins()

	return nil
}

func (g *Game) loadPlaylist(items []RoundConfig) error {
	normalized := make([]RoundConfig, 0, len(items))
	for i, item := range items {
		n, err := g.settings.normalize(item)
		if err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrInvalidPlaylist, i, err)
		}
		normalized = append(normalized, n)
	}

	g.playlist.replace(normalized)

	return nil
}

// NextInPlaylist moves the cursor forward, wrapping at the end.
func (g *Game) NextInPlaylist() (int, error) {
	i, err := g.playlist.advance()
	if err != nil {
		return i, err
	}
	g.syncAdmins()

	return i, nil
}

func (g *Game) SetPlaylistIndex(i int) error {
	if err := g.playlist.setIndex(i); err != nil {
		return err
	}
	g.syncAdmins()

	return nil
}

// StartFromPlaylist starts a round from the item under the cursor.
func (g *Game) StartFromPlaylist() (Round, error) {
	cfg, err := g.playlist.current()
	if err != nil {
		return Round{}, err
	}
	return g.StartRound(cfg)
}

// Playlist returns a copy of the items and the cursor.
func (g *Game) Playlist() ([]RoundConfig, int) {
	return slices.Clone(g.playlist.items), g.playlist.index
}
