package quiz

// Outbound event types.
const (
	EventHello          = "hello"
	EventJoinRequired   = "join:required"
	EventJoinOK         = "join:ok"
	EventRoundStarted   = "round:started"
	EventClicksAllowed  = "round:clicksAllowed"
	EventPlayerLocked   = "player:locked"
	EventReveal         = "round:reveal"
	EventJudged         = "round:judged"
	EventReset          = "round:reset"
	EventScoreboard     = "scoreboard"
	EventAdminState     = "admin:state"
	EventPlayerState    = "player:state"
	EventVolume         = "volume:update"
	EventQuestionShow   = "question:show"
	EventQuestionHide   = "question:hide"
	EventTargetShow     = "target:show"
	EventTargetHide     = "target:hide"
	EventRoomCodeChange = "roomcode:changed"
)

// Event is a single outbound message.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Outbox delivers events to an audience. The engine never blocks on it.
type Outbox interface {
	// Broadcast reaches the admins and every registered player.
	Broadcast(ev Event)
	// Admins reaches the admin group only.
	Admins(ev Event)
	// Send reaches a single connection.
	Send(connID string, ev Event)
}

type RoundStartedPayload struct {
	RoundID        int64   `json:"roundId"`
	Title          string  `json:"title,omitempty"`
	ImageURL       string  `json:"imageUrl"`
	VisibleMs      int64   `json:"visibleMs"`
	ClickRadiusPct float64 `json:"clickRadiusPct"`
	AllowAt        int64   `json:"allowAt"`
}

type ClicksAllowedPayload struct {
	RoundID int64 `json:"roundId"`
}

type RevealPayload struct {
	RoundID        int64   `json:"roundId"`
	Click          *Click  `json:"click"`
	ClickRadiusPct float64 `json:"clickRadiusPct"`
}

type AdminRevealPayload struct {
	RoundID        int64            `json:"roundId"`
	Clicks         map[string]Click `json:"clicks"`
	ClickRadiusPct float64          `json:"clickRadiusPct"`
}

type JudgedPayload struct {
	RoundID        int64            `json:"roundId"`
	Winners        []string         `json:"winners"`
	Clicks         map[string]Click `json:"clicks"`
	ClickRadiusPct float64          `json:"clickRadiusPct"`
	Target         Target           `json:"target"`
}

type ResetPayload struct {
	RoundID int64 `json:"roundId,omitempty"`
}

type VolumePayload struct {
	Volume float64 `json:"volume"`
}

type QuestionPayload struct {
	RoundID  int64  `json:"roundId"`
	Question string `json:"question,omitempty"`
}

type TargetPayload struct {
	RoundID int64   `json:"roundId"`
	Target  *Target `json:"target,omitempty"`
}

type HelloPayload struct {
	You    PlayerView   `json:"you"`
	Round  *PublicRound `json:"round"`
	Volume float64      `json:"volume"`
}

type JoinRequiredPayload struct {
	Round  *PublicRound `json:"round"`
	Volume float64      `json:"volume"`
}

type RoomCodePayload struct {
	Required bool `json:"required"`
}
