/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

func originAllowed(cfg *Config, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(cfg.corsOrigins, "*") {
		return true
	}

	if slices.Contains(cfg.corsOrigins, origin) {
		return true
	}

	u, err := url.Parse(origin)

	return err == nil && u.Host == r.Host
}

func serveSocket(cfg *Config, hub *Hub) httprouter.Handle {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(cfg, r)
		},
	}

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		role := r.URL.Query().Get("role")
		switch role {
		case "":
			role = rolePlayer
		case roleAdmin, rolePlayer:
		default:
			http.Error(w, "unknown role", http.StatusBadRequest)

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "WARN: Websocket upgrade from %s failed: %v", realIP(r), err)

			return
		}

		client := newClient(cfg, conn, uuid.NewString(), role)

		if !hub.join(client) {
			_ = conn.Close()

			return
		}

		logf(cfg, "QUIZ: %s %s connected from %s", role, client.id, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

// playerURL is the address players should open, as seen by the requester.
func playerURL(cfg *Config, r *http.Request) string {
	scheme := cfg.scheme()
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/"
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		target := playerURL(cfg, r)

		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code for %s (%s) to %s in %s",
			target,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerQuiz(cfg *Config, hub *Hub, errs chan<- error, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/ws", serveSocket(cfg, hub))

	mux.GET(cfg.prefix+"/qr", serveQR(cfg, errs))
}
