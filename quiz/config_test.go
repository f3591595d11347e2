package quiz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalizeImage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "https://example.com/a.jpg", want: "https://example.com/a.jpg"},
		{in: "HTTP://example.com/a.jpg", want: "HTTP://example.com/a.jpg"},
		{in: "img/a.jpg", want: "/img/a.jpg"},
		{in: "/img/a.jpg", want: "/img/a.jpg"},
		{in: `img\sub\a.jpg`, want: "/img/sub/a.jpg"},
		{in: "../../etc/passwd", want: "/etc/passwd"},
		{in: "  /x.png  ", want: "/x.png"},
		{in: "", err: true},
		{in: "/", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeImage(tt.in)
			if tt.err {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	s := DefaultSettings()

	got, err := s.normalize(RoundConfig{
		ImageURL:       "a.png",
		VisibleMs:      ptr(int64(-5)),
		ClickRadiusPct: ptr(-1.0),
		Target:         &Target{X: 2, Y: -1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), *got.VisibleMs)
	assert.Equal(t, 5.0, *got.ClickRadiusPct)
	assert.Equal(t, Target{X: 1, Y: 0, RPct: 5}, *got.Target)
}

func TestNormalizeTruncatesText(t *testing.T) {
	s := DefaultSettings()

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'q'
	}

	got, err := s.normalize(RoundConfig{ImageURL: "a.png", Question: string(long), Title: "  T  "})
	require.NoError(t, err)
	assert.Len(t, got.Question, maxQuestionLength)
	assert.Equal(t, "T", got.Title)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "not_yet_allowed", Reason(ErrNotYetAllowed))
	assert.Equal(t, "already_locked", Reason(ErrAlreadyLocked))
	assert.Equal(t, "wrong_code", Reason(ErrWrongCode))
	assert.Equal(t, "no_playlist", Reason(ErrNoPlaylist))
	assert.Equal(t, "internal", Reason(assert.AnError))
}

func TestRoundConfigDefaultsMalformedJSONFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		visible int64
		radius  float64
		target  Target
	}{
		{name: "string visible", body: `{"imageUrl":"/a.png","visibleMs":"3000"}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "word visible", body: `{"imageUrl":"/a.png","visibleMs":"soon"}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "fractional visible", body: `{"imageUrl":"/a.png","visibleMs":1500.5}`, visible: 1501, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "huge visible", body: `{"imageUrl":"/a.png","visibleMs":1e13}`, visible: MaxVisibleMs, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "string radius", body: `{"imageUrl":"/a.png","clickRadiusPct":"5"}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "null radius", body: `{"imageUrl":"/a.png","clickRadiusPct":null}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "string target", body: `{"imageUrl":"/a.png","target":"middle"}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
		{name: "bad axis", body: `{"imageUrl":"/a.png","target":{"x":"left","y":0.2,"rPct":8}}`, visible: 3000, radius: 5, target: Target{X: 0.5, Y: 0.2, RPct: 8}},
		{name: "numeric title", body: `{"imageUrl":"/a.png","title":7,"visibleMs":0}`, visible: 0, radius: 5, target: Target{X: 0.5, Y: 0.5, RPct: 5}},
	}

	s := DefaultSettings()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg RoundConfig
			require.NoError(t, json.Unmarshal([]byte(tt.body), &cfg))

			got, err := s.normalize(cfg)
			require.NoError(t, err)
			assert.Equal(t, "/a.png", got.ImageURL)
			assert.Equal(t, tt.visible, *got.VisibleMs)
			assert.Equal(t, tt.radius, *got.ClickRadiusPct)
			assert.Equal(t, tt.target, *got.Target)
		})
	}
}

func TestRoundConfigJSONStillNeedsImage(t *testing.T) {
	var cfg RoundConfig
	require.NoError(t, json.Unmarshal([]byte(`{"imageUrl":42,"visibleMs":1000}`), &cfg))

	_, err := DefaultSettings().normalize(cfg)
	require.ErrorIs(t, err, ErrInvalidInput)

	assert.Error(t, json.Unmarshal([]byte(`"just a string"`), &cfg))
}

func TestRoundConfigDefaultsMalformedYAMLFields(t *testing.T) {
	var items []RoundConfig
	require.NoError(t, yaml.Unmarshal([]byte(`
- imageUrl: /a.png
  visibleMs: soon
  clickRadiusPct: wide
  target: {x: 0.25, y: [1, 2]}
- imageUrl: /b.png
  visibleMs: 1200
  clickRadiusPct: .inf
`), &items))
	require.Len(t, items, 2)

	s := DefaultSettings()

	a, err := s.normalize(items[0])
	require.NoError(t, err)
	assert.Equal(t, int64(3000), *a.VisibleMs)
	assert.Equal(t, 5.0, *a.ClickRadiusPct)
	assert.Equal(t, Target{X: 0.25, Y: 0.5, RPct: 5}, *a.Target)

	b, err := s.normalize(items[1])
	require.NoError(t, err)
	assert.Equal(t, int64(1200), *b.VisibleMs)
	assert.Equal(t, 5.0, *b.ClickRadiusPct)

	assert.Error(t, yaml.Unmarshal([]byte("- just words"), &items))
}

func TestNormalizeCapsVisible(t *testing.T) {
	s := DefaultSettings()
	s.DefaultVisible = 1000 * time.Hour

	got, err := s.normalize(RoundConfig{ImageURL: "a.png", VisibleMs: ptr(int64(1e13))})
	require.NoError(t, err)
	assert.Equal(t, MaxVisibleMs, *got.VisibleMs)

	got, err = s.normalize(RoundConfig{ImageURL: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, MaxVisibleMs, *got.VisibleMs)
}
