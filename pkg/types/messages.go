package types

// Event names. game:hint and game:guess travel both ways.
const (
	EventJoin   = "game:join"
	EventStart  = "game:start"
	EventHint   = "game:hint"
	EventGuess  = "game:guess"
	EventGiveUp = "game:giveup"
	EventState  = "game:state"
	EventAck    = "ack"
	EventError  = "error"
)

// Role names shown in the room listing.
const (
	WaitingForGiver   = "meneur"
	WaitingForGuesser = "devineur"
)

// JoinRequest:
//
//	roomId: string
//	role:   "giver" | "guesser"
//	pseudo: string (name is accepted too)
type JoinRequest struct {
	RoomID string `json:"roomId"`
	Role   string `json:"role"`
	Pseudo string `json:"pseudo,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (r JoinRequest) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pseudo
}

type StartRequest struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word,omitempty"`
}

type HintRequest struct {
	RoomID string `json:"roomId"`
	Hint   string `json:"hint"`
}

type GuessRequest struct {
	RoomID string `json:"roomId"`
	Guess  string `json:"guess"`
}

type GiveUpRequest struct {
	RoomID string `json:"roomId"`
}

// Ack answers a hint, or a join that failed. Code is one of BAD_INPUT,
// NO_ROOM, HINT_WORD_INCLUDED, HINT_3SEQ_INCLUDED.
type Ack struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// JoinAck answers a successful join. RedirectedFrom is null unless the
// matchmaker moved the player.
type JoinAck struct {
	OK             bool       `json:"ok"`
	State          *StateView `json:"state"`
	RedirectedFrom *string    `json:"redirectedFrom"`
}

// ErrorMessage is the payload of an "error" frame: malformed JSON, unknown
// type, or too many messages.
type ErrorMessage struct {
	Message string `json:"message"`
}

type GuessResult struct {
	Guess   string `json:"guess"`
	Correct bool   `json:"correct"`
}

type RoomInfo struct {
	ID         string `json:"id"`
	Color      string `json:"color"`
	Host       string `json:"host"`
	WaitingFor string `json:"waitingFor"`
}
