/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import "errors"

var (
	ErrNoRound         = errors.New("no active round")
	ErrNotYetAllowed   = errors.New("clicks not yet allowed")
	ErrAlreadyLocked   = errors.New("click already locked")
	ErrAlreadyJudged   = errors.New("round already judged")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrInvalidInput    = errors.New("invalid input")
	ErrWrongCode       = errors.New("wrong room code")
	ErrNoPlaylist      = errors.New("playlist is empty")
	ErrInvalidPlaylist = errors.New("invalid playlist")
	ErrIndexOutOfRange = errors.New("playlist index out of range")
)

// Reason maps an engine error to the short code sent in negative
// acknowledgments. Unrecognized errors map to "internal".
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoRound):
		return "no_round"
	case errors.Is(err, ErrNotYetAllowed):
		return "not_yet_allowed"
	case errors.Is(err, ErrAlreadyLocked):
		return "already_locked"
	case errors.Is(err, ErrAlreadyJudged):
		return "already_judged"
	case errors.Is(err, ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrWrongCode):
		return "wrong_code"
	case errors.Is(err, ErrNoPlaylist):
		return "no_playlist"
	case errors.Is(err, ErrInvalidPlaylist):
		return "invalid_playlist"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return "internal"
	}
}
