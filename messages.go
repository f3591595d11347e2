package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Seednode/bildklick/quiz"
)

// Inbound message types.
const (
	msgStartRound        = "admin:startRound"
	msgRevealClicks      = "admin:revealClicks"
	msgJudge             = "admin:judge"
	msgNextRound         = "admin:nextRound"
	msgSetVolume         = "admin:setVolume"
	msgSetPlaylist       = "admin:setPlaylist"
	msgSetPlaylistIndex  = "admin:setPlaylistIndex"
	msgStartFromPlaylist = "admin:startFromPlaylist"
	msgNextInPlaylist    = "admin:nextInPlaylist"
	msgSetRoomCode       = "admin:setRoomCode"
	msgShowQuestion      = "admin:showQuestion"
	msgHideQuestion      = "admin:hideQuestion"
	msgShowTarget        = "admin:showTarget"
	msgHideTarget        = "admin:hideTarget"

	msgSetName = "player:setName"
	msgLock    = "player:lock"
	msgJoin    = "player:join"
	msgPreview = "player:preview"
)

const eventAck = "ack"

var (
	errBadMessage  = errors.New("malformed message")
	errNotJoined   = errors.New("player has not joined")
	errRateLimited = errors.New("too many messages")
	errUnknownType = errors.New("unknown message type")

	errMissingField = fmt.Errorf("%w: missing field", errBadMessage)
)

// ClientMessage is the envelope every client sends. Ref, when set, is
// echoed back in the acknowledgment.
type ClientMessage struct {
	Type    string          `json:"type"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type AckPayload struct {
	Ref    string `json:"ref,omitempty"`
	Type   string `json:"type"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type clickPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type joinPayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type winnersData struct {
	RoundID int64    `json:"roundId"`
	Winners []string `json:"winners"`
}

type indexData struct {
	Index int `json:"index"`
}

type volumeData struct {
	Volume float64 `json:"volume"`
}

type roundData struct {
	RoundID int64 `json:"roundId"`
}

func reason(err error) string {
	switch {
	case errors.Is(err, errBadMessage), errors.Is(err, errUnknownType):
		return "bad_message"
	case errors.Is(err, errNotJoined):
		return "not_joined"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	}
	return quiz.Reason(err)
}

func newAck(msg ClientMessage, data any, err error) quiz.Event {
	ack := AckPayload{
		Ref:  msg.Ref,
		Type: msg.Type,
		OK:   err == nil,
		Data: data,
	}
	if err != nil {
		ack.Reason = reason(err)
		ack.Data = nil
	}

	return quiz.Event{Type: eventAck, Payload: ack}
}

// decodeField accepts either a bare value or an object holding it under
// key, so both `0.4` and `{"volume":0.4}` work.
func decodeField[T any](raw json.RawMessage, key string) (T, error) {
	var v T

	if len(raw) == 0 {
		return v, errMissingField
	}

	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return v, fmt.Errorf("%w: %v", errBadMessage, err)
	}

	field, ok := obj[key]
	if !ok {
		return v, fmt.Errorf("%w %q", errMissingField, key)
	}

	if err := json.Unmarshal(field, &v); err != nil {
		return v, fmt.Errorf("%w: %q: %v", errBadMessage, key, err)
	}

	return v, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T

	if len(raw) == 0 {
		return v, fmt.Errorf("%w: missing payload", errBadMessage)
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", errBadMessage, err)
	}

	return v, nil
}
