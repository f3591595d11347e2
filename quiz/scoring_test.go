package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHit(t *testing.T) {
	target := Target{X: 0.5, Y: 0.5, RPct: 10}

	tests := []struct {
		name  string
		click Click
		want  bool
	}{
		{"center", Click{X: 0.5, Y: 0.5}, true},
		{"inside", Click{X: 0.5, Y: 0.55}, true},
		{"boundary vertical", Click{X: 0.5, Y: 0.6}, true},
		{"boundary horizontal", Click{X: 0.4, Y: 0.5}, true},
		{"boundary diagonal", Click{X: 0.56, Y: 0.58}, true},
		{"just outside", Click{X: 0.5, Y: 0.6001}, false},
		{"far", Click{X: 0, Y: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hit(tt.click, target))
		})
	}
}

func TestDistanceIsInPercent(t *testing.T) {
	assert.InDelta(t, 5.0, DistancePct(Click{X: 0.5, Y: 0.55}, Target{X: 0.5, Y: 0.5}), 1e-9)
	assert.InDelta(t, 50.0, DistancePct(Click{X: 0.8, Y: 0.9}, Target{X: 0.5, Y: 0.5}), 1e-9)
}

func TestJudgeAwardsOnlyHits(t *testing.T) {
	f := newFixture(t)
	f.game.Register("hit")
	f.game.Register("miss")
	f.game.Register("idle")

	r, err := f.game.StartRound(roundCfg(0, Target{X: 0.5, Y: 0.5, RPct: 10}))
	require.NoError(t, err)

	_, err = f.game.AcceptClick("hit", 0.45, 0.5)
	require.NoError(t, err)
	_, err = f.game.AcceptClick("miss", 0.1, 0.1)
	require.NoError(t, err)

	res, err := f.game.Judge()
	require.NoError(t, err)
	assert.Equal(t, r.ID, res.RoundID)
	assert.Equal(t, []string{"hit"}, res.Winners)

	for id, want := range map[string]int{"hit": 5, "miss": 0, "idle": 0} {
		p, _ := f.game.Player(id)
		assert.Equal(t, want, p.Score, id)
	}

	ev, ok := f.out.last(toAll, EventJudged)
	require.True(t, ok)
	judged := ev.Payload.(JudgedPayload)
	assert.Equal(t, []string{"hit"}, judged.Winners)
	assert.Len(t, judged.Clicks, 2)
	assert.Equal(t, Target{X: 0.5, Y: 0.5, RPct: 10}, judged.Target)

	round, _ := f.game.Round()
	assert.True(t, round.Revealed)
	assert.True(t, round.Judged)
	assert.Equal(t, PhaseJudged, round.Phase)

	_, ok = f.out.last(toAll, EventScoreboard)
	assert.True(t, ok)
}

func TestJudgeTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	f.game.Register("p1")

	_, err := f.game.StartRound(roundCfg(0, Target{X: 0.5, Y: 0.5, RPct: 10}))
	require.NoError(t, err)
	_, err = f.game.AcceptClick("p1", 0.5, 0.5)
	require.NoError(t, err)

	_, err = f.game.Judge()
	require.NoError(t, err)
	_, err = f.game.Judge()
	require.ErrorIs(t, err, ErrAlreadyJudged)

	p, _ := f.game.Player("p1")
	assert.Equal(t, 5, p.Score)
	assert.Len(t, f.game.History(), 1)
}

func TestJudgeWithoutRound(t *testing.T) {
	f := newFixture(t)
	_, err := f.game.Judge()
	assert.ErrorIs(t, err, ErrNoRound)
}

func TestDisconnectedPlayerIsNotJudged(t *testing.T) {
	f := newFixture(t)
	f.game.Register("gone")
	f.game.Register("stay")

	_, err := f.game.StartRound(roundCfg(0, Target{X: 0.5, Y: 0.5, RPct: 10}))
	require.NoError(t, err)
	_, err = f.game.AcceptClick("gone", 0.5, 0.5)
	require.NoError(t, err)
	_, err = f.game.AcceptClick("stay", 0.5, 0.5)
	require.NoError(t, err)

	f.game.Remove("gone")

	res, err := f.game.Judge()
	require.NoError(t, err)
	assert.Equal(t, []string{"stay"}, res.Winners)
	assert.NotContains(t, f.game.Clicks(), "gone")
}

func TestLedgerRecordsAwards(t *testing.T) {
	f := newFixture(t)
	f.game.Register("p1")
	require.NoError(t, f.game.SetName("p1", "Alice"))

	r, err := f.game.StartRound(roundCfg(0, Target{X: 0.5, Y: 0.5, RPct: 10}))
	require.NoError(t, err)
	_, err = f.game.AcceptClick("p1", 0.5, 0.5)
	require.NoError(t, err)
	_, err = f.game.Judge()
	require.NoError(t, err)

	h := f.game.History()
	require.Len(t, h, 1)
	assert.Equal(t, HistoryEntry{
		RoundID:  r.ID,
		PlayerID: "p1",
		Name:     "Alice",
		Delta:    5,
		Reason:   "hit",
		At:       f.clock.Now(),
	}, h[0])
}

func TestLedgerRecentIsCapped(t *testing.T) {
	l := &Ledger{}
	for i := range 10 {
		l.append(HistoryEntry{RoundID: int64(i)})
	}

	recent := l.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(7), recent[0].RoundID)
	assert.Equal(t, int64(9), recent[2].RoundID)
	assert.Len(t, l.Recent(0), 10)
	assert.Equal(t, 10, l.Len())

	recent[0].Delta = 99
	assert.Zero(t, l.Recent(3)[0].Delta, "Recent returns a copy")
}
