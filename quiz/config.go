/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	maxTitleLength    = 80
	maxQuestionLength = 200

	// MaxVisibleMs caps the blackout so it always fits a time.Duration.
	MaxVisibleMs int64 = 24 * 60 * 60 * 1000
)

// Settings are the process-wide knobs of the engine.
type Settings struct {
	DefaultVisible   time.Duration
	DefaultRadiusPct float64
	MaxNameLength    int
	Reward           int
	HistoryLimit     int
	StaticRoot       string
}

func DefaultSettings() Settings {
	return Settings{
		DefaultVisible:   3 * time.Second,
		DefaultRadiusPct: 5,
		MaxNameLength:    32,
		Reward:           5,
		HistoryLimit:     50,
		StaticRoot:       "public",
	}
}

// Target is the hidden answer region. X and Y are normalized to [0,1],
// RPct is the tolerance radius in percent of the normalized space.
type Target struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	RPct float64 `json:"rPct" yaml:"rPct"`
}

// RoundConfig is everything needed to start a round. Nil pointers are
// filled with defaults by normalize.
type RoundConfig struct {
	Title          string   `json:"title,omitempty" yaml:"title"`
	Question       string   `json:"question,omitempty" yaml:"question"`
	ImageURL       string   `json:"imageUrl" yaml:"imageUrl"`
	Target         *Target  `json:"target,omitempty" yaml:"target"`
	VisibleMs      *int64   `json:"visibleMs,omitempty" yaml:"visibleMs"`
	ClickRadiusPct *float64 `json:"clickRadiusPct,omitempty" yaml:"clickRadiusPct"`
}

// normalize returns a copy of cfg with every optional field populated.
// Only a missing or unusable image reference is an error.
func (s Settings) normalize(cfg RoundConfig) (RoundConfig, error) {
	img, err := NormalizeImage(cfg.ImageURL)
	if err != nil {
		return RoundConfig{}, err
	}

	out := RoundConfig{
		Title:    truncate(strings.TrimSpace(cfg.Title), maxTitleLength),
		Question: truncate(strings.TrimSpace(cfg.Question), maxQuestionLength),
		ImageURL: img,
	}

	visible := min(s.DefaultVisible.Milliseconds(), MaxVisibleMs)
	if cfg.VisibleMs != nil {
		visible = min(max(*cfg.VisibleMs, 0), MaxVisibleMs)
	}
	out.VisibleMs = &visible

	radius := s.DefaultRadiusPct
	if cfg.ClickRadiusPct != nil && *cfg.ClickRadiusPct > 0 && !math.IsInf(*cfg.ClickRadiusPct, 0) {
		radius = *cfg.ClickRadiusPct
	}
	out.ClickRadiusPct = &radius

	target := Target{X: 0.5, Y: 0.5, RPct: radius}
	if cfg.Target != nil {
		target.X = clamp01(cfg.Target.X)
		target.Y = clamp01(cfg.Target.Y)
		if cfg.Target.RPct > 0 && !math.IsInf(cfg.Target.RPct, 0) {
			target.RPct = cfg.Target.RPct
		}
	}
	out.Target = &target

	return out, nil
}

// NormalizeImage accepts absolute http(s) URLs as-is and turns anything
// else into a cleaned site-root-relative path.
func NormalizeImage(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return raw, nil
		}
	}

	p := path.Clean("/" + strings.ReplaceAll(raw, `\`, "/"))
	if p == "/" {
		return "", fmt.Errorf("%w: image %q is not a file", ErrInvalidInput, raw)
	}

	return p, nil
}

// assetMissing reports whether a site-relative image cannot be found
// under root. Absolute URLs are never checked.
func assetMissing(root, img string) bool {
	if root == "" || !strings.HasPrefix(img, "/") {
		return false
	}

	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(img, "/"))))

	return err != nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// UnmarshalJSON reads a round leniently: optional fields of the wrong
// type are dropped so normalize can default them. Only a body that is
// not an object is an error.
func (c *RoundConfig) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*c = RoundConfig{
		Title:    jsonString(fields["title"]),
		Question: jsonString(fields["question"]),
		ImageURL: jsonString(fields["imageUrl"]),
	}

	var target map[string]json.RawMessage
	if raw, ok := fields["target"]; ok && json.Unmarshal(raw, &target) == nil && target != nil {
		c.Target = looseTarget(
			looseNumber(jsonNumber(target["x"])),
			looseNumber(jsonNumber(target["y"])),
			looseNumber(jsonNumber(target["rPct"])),
		)
	}

	c.setVisibleMs(looseNumber(jsonNumber(fields["visibleMs"])))
	c.setClickRadius(looseNumber(jsonNumber(fields["clickRadiusPct"])))

	return nil
}

// UnmarshalYAML is the playlist-file twin of UnmarshalJSON.
func (c *RoundConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a round must be a mapping", value.Line)
	}

	var fields struct {
		Title          yaml.Node `yaml:"title"`
		Question       yaml.Node `yaml:"question"`
		ImageURL       yaml.Node `yaml:"imageUrl"`
		Target         yaml.Node `yaml:"target"`
		VisibleMs      yaml.Node `yaml:"visibleMs"`
		ClickRadiusPct yaml.Node `yaml:"clickRadiusPct"`
	}
	if err := value.Decode(&fields); err != nil {
		return err
	}

	*c = RoundConfig{
		Title:    yamlString(&fields.Title),
		Question: yamlString(&fields.Question),
		ImageURL: yamlString(&fields.ImageURL),
	}

	if fields.Target.Kind == yaml.MappingNode {
		var target struct {
			X    yaml.Node `yaml:"x"`
			Y    yaml.Node `yaml:"y"`
			RPct yaml.Node `yaml:"rPct"`
		}
		if fields.Target.Decode(&target) == nil {
			c.Target = looseTarget(
				looseNumber(yamlNumber(&target.X)),
				looseNumber(yamlNumber(&target.Y)),
				looseNumber(yamlNumber(&target.RPct)),
			)
		}
	}

	c.setVisibleMs(looseNumber(yamlNumber(&fields.VisibleMs)))
	c.setClickRadius(looseNumber(yamlNumber(&fields.ClickRadiusPct)))

	return nil
}

func (c *RoundConfig) setVisibleMs(f *float64) {
	if f == nil {
		return
	}
	ms := int64(math.Round(math.Max(0, math.Min(*f, float64(MaxVisibleMs)))))
	c.VisibleMs = &ms
}

func (c *RoundConfig) setClickRadius(f *float64) {
	if f == nil || *f <= 0 {
		return
	}
	c.ClickRadiusPct = f
}

// looseTarget fills an unusable axis with the image center. An unusable
// radius stays zero and is defaulted by normalize.
func looseTarget(x, y, r *float64) *Target {
	t := &Target{X: 0.5, Y: 0.5}
	if x != nil {
		t.X = *x
	}
	if y != nil {
		t.Y = *y
	}
	if r != nil {
		t.RPct = *r
	}
	return t
}

// looseNumber discards values that are missing or not finite.
func looseNumber(f float64, ok bool) *float64 {
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func jsonNumber(raw json.RawMessage) (float64, bool) {
	var f *float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || f == nil {
		return 0, false
	}
	return *f, true
}

func jsonString(raw json.RawMessage) string {
	var s *string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == nil {
		return ""
	}
	return *s
}

func yamlNumber(n *yaml.Node) (float64, bool) {
	if n.Kind != yaml.ScalarNode {
		return 0, false
	}
	if tag := n.ShortTag(); tag != "!!int" && tag != "!!float" {
		return 0, false
	}

	var f float64
	if n.Decode(&f) != nil {
		return 0, false
	}
	return f, true
}

func yamlString(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}
