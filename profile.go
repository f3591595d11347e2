/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// serveProfile strips the URL prefix so pprof sees the /debug/pprof/ paths
// it expects; pprof.Index serves both the index and the named profiles.
func serveProfile(cfg *Config) http.Handler {
	return http.StripPrefix(cfg.prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case "/debug/pprof/profile":
			pprof.Profile(w, r)
		case "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			pprof.Index(w, r)
		}
	}))
}

func registerProfileHandlers(cfg *Config, mux *httprouter.Router) {
	base := cfg.prefix + "/debug/pprof"

	mux.Handler(http.MethodGet, base+"/*profile", serveProfile(cfg))

	logf(cfg, "SERVE: Profiling handlers registered under %s/", base)
}
