/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// serveStatic serves files under --static-root for every GET the router
// did not match. Directories resolve to their index.html.
func serveStatic(cfg *Config, errs chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		rel := strings.TrimPrefix(r.URL.Path, cfg.prefix)
		name := filepath.Join(cfg.staticRoot, filepath.FromSlash(path.Clean("/"+rel)))

		info, err := os.Stat(name)
		if err == nil && info.IsDir() {
			name = filepath.Join(name, "index.html")
			info, err = os.Stat(name)
		}
		if err != nil || info.IsDir() {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(newPage("Not Found", "Nothing here. Back to the quiz.")))
			return
		}

		f, err := os.Open(name)
		if err != nil {
			errs <- err
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		securityHeaders(cfg, w)
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)

		logf(cfg, "SERVE: %s (%s) to %s in %s",
			rel,
			humanReadableSize(info.Size()),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	})
}
