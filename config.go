package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/bildklick/quiz"
)

type Config struct {
	bind           string
	corsOrigins    []string
	defaultRadius  float64
	defaultVisible time.Duration
	historyLimit   int
	maxNameLength  int
	playlist       string
	port           int
	prefix         string
	profile        bool
	rateBurst      int
	rateLimit      float64
	reward         int
	roomCode       string
	staticRoot     string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxNameLength < 1 || c.maxNameLength > 64 {
		return fmt.Errorf("invalid max name length (must be between 1-64 inclusive): %d", c.maxNameLength)
	}
	if c.defaultRadius <= 0 || c.defaultRadius > 100 {
		return fmt.Errorf("invalid default radius (must be above 0 and at most 100): %v", c.defaultRadius)
	}
	if c.defaultVisible < 0 {
		return fmt.Errorf("invalid default visible duration (must not be negative): %s", c.defaultVisible)
	}
	if c.reward < 1 {
		return fmt.Errorf("invalid reward (must be positive): %d", c.reward)
	}
	if c.rateLimit <= 0 || c.rateBurst < 1 {
		return fmt.Errorf("invalid rate limit (must be positive): %v/s, burst %d", c.rateLimit, c.rateBurst)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) settings() quiz.Settings {
	s := quiz.DefaultSettings()
	s.DefaultVisible = c.defaultVisible
	s.DefaultRadiusPct = c.defaultRadius
	s.MaxNameLength = c.maxNameLength
	s.Reward = c.reward
	s.HistoryLimit = c.historyLimit
	s.StaticRoot = c.staticRoot

	return s
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BILDKLICK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "bildklick",
		Short:         "A moderated picture-click quiz, played live in the browser.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BILDKLICK_BIND)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origins", []string{"*"}, "origins allowed to make cross-origin requests (env: BILDKLICK_CORS_ORIGINS)")
	fs.Float64Var(&cfg.defaultRadius, "default-radius", 5, "click radius in percent when a round omits one (env: BILDKLICK_DEFAULT_RADIUS)")
	fs.DurationVar(&cfg.defaultVisible, "default-visible", 3*time.Second, "image display time when a round omits one (env: BILDKLICK_DEFAULT_VISIBLE)")
	fs.IntVar(&cfg.historyLimit, "history-limit", 50, "score history entries sent to admins (env: BILDKLICK_HISTORY_LIMIT)")
	fs.IntVar(&cfg.maxNameLength, "max-name-length", 32, "maximum player name length (env: BILDKLICK_MAX_NAME_LENGTH)")
	fs.StringVar(&cfg.playlist, "playlist", "", "yaml or json playlist to load at startup (env: BILDKLICK_PLAYLIST)")
	fs.IntVarP(&cfg.port, "port", "p", 10000, "port to listen on (env: BILDKLICK_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BILDKLICK_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BILDKLICK_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 40, "inbound message burst allowed per connection (env: BILDKLICK_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 20, "inbound messages per second allowed per connection (env: BILDKLICK_RATE_LIMIT)")
	fs.IntVar(&cfg.reward, "reward", 5, "points awarded for a hit (env: BILDKLICK_REWARD)")
	fs.StringVar(&cfg.roomCode, "room-code", "", "code players must enter to join; empty disables the gate (env: BILDKLICK_ROOM_CODE)")
	fs.StringVar(&cfg.staticRoot, "static-root", "public", "directory served as the site root (env: BILDKLICK_STATIC_ROOT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BILDKLICK_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BILDKLICK_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BILDKLICK_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BILDKLICK_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("bildklick v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
