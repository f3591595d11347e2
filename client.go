package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Seednode/bildklick/quiz"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 256

	roleAdmin  = "admin"
	rolePlayer = "player"
)

// connHandler is what a connection may do, chosen once by role.
type connHandler interface {
	connect(g *quiz.Game)
	handle(g *quiz.Game, msg ClientMessage) (any, error)
	disconnect(g *quiz.Game)
}

type Client struct {
	conn    *websocket.Conn
	send    chan quiz.Event
	id      string
	admin   bool
	handler connHandler
	limiter *rate.Limiter

	// throttled is owned by the read pump.
	throttled bool
}

func newClient(cfg *Config, conn *websocket.Conn, id, role string) *Client {
	c := &Client{
		conn:    conn,
		send:    make(chan quiz.Event, sendBufferSize),
		id:      id,
		limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
	}

	if role == roleAdmin {
		c.admin = true
		c.handler = adminConn{id: id}
	} else {
		c.handler = playerConn{id: id}
	}

	return c
}

func (c *Client) role() string {
	if c.admin {
		return roleAdmin
	}
	return rolePlayer
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logf(h.cfg, "WARN: Read from %s %s failed: %v", c.role(), c.id, err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if req, ok := c.inbound(data); ok {
			h.submit(req)
		}
	}
}

// inbound turns a frame into a hub request. The limiter is charged before
// decoding, and only the first frame of a throttled run is answered.
func (c *Client) inbound(data []byte) (request, bool) {
	req := request{client: c}

	if !c.limiter.Allow() {
		if c.throttled {
			return req, false
		}
		c.throttled = true
		req.err = errRateLimited

		return req, true
	}
	c.throttled = false

	if err := json.Unmarshal(data, &req.msg); err != nil {
		req.err = fmt.Errorf("%w: %v", errBadMessage, err)
	}

	return req, true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type adminConn struct {
	id string
}

func (a adminConn) connect(g *quiz.Game) {
	g.ConnectAdmin(a.id)
}

func (a adminConn) disconnect(*quiz.Game) {}

func (a adminConn) handle(g *quiz.Game, msg ClientMessage) (any, error) {
	switch msg.Type {
	case msgStartRound:
		cfg, err := decode[quiz.RoundConfig](msg.Payload)
		if err != nil {
			return nil, err
		}
		r, err := g.StartRound(cfg)
		if err != nil {
			return nil, err
		}
		return roundData{RoundID: r.ID}, nil

	case msgRevealClicks:
		return nil, g.RevealClicks()

	case msgJudge:
		res, err := g.Judge()
		if err != nil {
			return nil, err
		}
		return winnersData{RoundID: res.RoundID, Winners: res.Winners}, nil

	case msgNextRound:
		g.Reset()
		return nil, nil

	case msgSetVolume:
		v, err := decodeField[float64](msg.Payload, "volume")
		if err != nil {
			return nil, err
		}
		return volumeData{Volume: g.SetVolume(v)}, nil

	case msgSetPlaylist:
		items, err := decodeField[[]quiz.RoundConfig](msg.Payload, "items")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", quiz.ErrInvalidPlaylist, err)
		}
		if err := g.SetPlaylist(items); err != nil {
			return nil, err
		}
		_, i := g.Playlist()
		return indexData{Index: i}, nil

	case msgSetPlaylistIndex:
		i, err := decodeField[int](msg.Payload, "index")
		if err != nil {
			return nil, err
		}
		if err := g.SetPlaylistIndex(i); err != nil {
			return nil, err
		}
		return indexData{Index: i}, nil

	case msgStartFromPlaylist:
		r, err := g.StartFromPlaylist()
		if err != nil {
			return nil, err
		}
		return roundData{RoundID: r.ID}, nil

	case msgNextInPlaylist:
		i, err := g.NextInPlaylist()
		if err != nil {
			return nil, err
		}
		return indexData{Index: i}, nil

	case msgSetRoomCode:
		code, err := decodeField[string](msg.Payload, "code")
		if err != nil {
			return nil, err
		}
		g.SetRoomCode(code)
		return nil, nil

	case msgShowQuestion:
		return nil, g.ShowQuestion()

	case msgHideQuestion:
		return nil, g.HideQuestion()

	case msgShowTarget:
		return nil, g.ShowTarget()

	case msgHideTarget:
		return nil, g.HideTarget()
	}

	return nil, fmt.Errorf("%w: %q", errUnknownType, msg.Type)
}

type playerConn struct {
	id string
}

func (p playerConn) connect(g *quiz.Game) {
	g.Connect(p.id)
}

func (p playerConn) disconnect(g *quiz.Game) {
	g.Remove(p.id)
}

func (p playerConn) handle(g *quiz.Game, msg ClientMessage) (any, error) {
	switch msg.Type {
	case msgJoin:
		j, err := decode[joinPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		_, err = g.Join(p.id, j.Name, j.Code)
		return nil, err

	case msgPreview:
		// Previews are drawn client-side only.
		return nil, nil
	}

	if !g.Joined(p.id) {
		return nil, errNotJoined
	}

	switch msg.Type {
	case msgSetName:
		// A missing name is an empty one, which keeps the current name.
		name, err := decodeField[string](msg.Payload, "name")
		if err != nil && !errors.Is(err, errMissingField) {
			return nil, err
		}
		return nil, g.SetName(p.id, name)

	case msgLock:
		pos, err := decode[clickPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		c, err := g.AcceptClick(p.id, pos.X, pos.Y)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q", errUnknownType, msg.Type)
}
