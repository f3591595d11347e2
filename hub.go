/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"

	"github.com/Seednode/bildklick/quiz"
)

type request struct {
	client *Client
	msg    ClientMessage
	err    error
}

// Hub owns the quiz state. Every connect, disconnect, inbound message and
// timer callback is applied on the run goroutine, one at a time.
type Hub struct {
	cfg  *Config
	game *quiz.Game

	clients map[string]*Client
	admins  map[string]*Client

	register chan *Client
	unreg    chan *Client
	inbound  chan request
	tasks    chan func()
	done     chan struct{}
}

func newHub(cfg *Config, playlist []quiz.RoundConfig, opts ...quiz.Option) *Hub {
	h := &Hub{
		cfg:      cfg,
		clients:  make(map[string]*Client),
		admins:   make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		inbound:  make(chan request, 64),
		tasks:    make(chan func(), 16),
		done:     make(chan struct{}),
	}

	base := []quiz.Option{
		quiz.WithSettings(cfg.settings()),
		quiz.WithLogf(quizLogger(cfg)),
		quiz.WithDispatch(h.enqueue),
		quiz.WithRoomCode(cfg.roomCode),
		quiz.WithPlaylist(playlist),
	}
	h.game = quiz.NewGame(h, append(base, opts...)...)

	return h
}

func (h *Hub) run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c.id] = c
			if c.admin {
				h.admins[c.id] = c
			}
			c.handler.connect(h.game)

		case c := <-h.unreg:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				delete(h.admins, c.id)
				close(c.send)
			}
			c.handler.disconnect(h.game)

			logf(h.cfg, "QUIZ: %s %s disconnected", c.role(), c.id)

		case req := <-h.inbound:
			h.handle(req)

		case task := <-h.tasks:
			task()
		}
	}
}

func (h *Hub) handle(req request) {
	c := req.client
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	var (
		data any
		err  = req.err
	)
	if err == nil {
		data, err = c.handler.handle(h.game, req.msg)
	}

	if err != nil {
		logf(h.cfg, "QUIZ: %s %s: %s rejected: %v", c.role(), c.id, req.msg.Type, err)
	}

	if req.msg.Ref != "" || err != nil {
		h.Send(c.id, newAck(req.msg, data, err))
	}
}

// join hands a new client to the run loop. It reports false once the
// hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(req request) {
	select {
	case h.inbound <- req:
	case <-h.done:
	}
}

// enqueue runs f on the hub goroutine; it is the engine's dispatch hook.
func (h *Hub) enqueue(f func()) {
	select {
	case h.tasks <- f:
	case <-h.done:
	}
}

// Broadcast skips connections still waiting behind the room code; they
// learn the game state from join:ok.
func (h *Hub) Broadcast(ev quiz.Event) {
	for _, c := range h.clients {
		if c.admin || h.game.Joined(c.id) {
			h.deliver(c, ev)
		}
	}
}

func (h *Hub) Admins(ev quiz.Event) {
	for _, c := range h.admins {
		h.deliver(c, ev)
	}
}

func (h *Hub) Send(connID string, ev quiz.Event) {
	if c, ok := h.clients[connID]; ok {
		h.deliver(c, ev)
	}
}

// deliver never blocks. A client whose buffer is full is cut off; its
// read pump notices the closed socket and unregisters it.
func (h *Hub) deliver(c *Client, ev quiz.Event) {
	select {
	case c.send <- ev:
	default:
		delete(h.clients, c.id)
		delete(h.admins, c.id)
		close(c.send)

		logf(h.cfg, "WARN: Dropped slow %s %s", c.role(), c.id)
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.game.Close()

	for id, c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, id)
	}
	clear(h.admins)
}
