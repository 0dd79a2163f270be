package types

// StateView is the room as one connection sees it. Word is only set for
// the giver.
type StateView struct {
	RoomID      string   `json:"roomId"`
	Role        string   `json:"role,omitempty"`
	Word        *string  `json:"word"`
	Hint        *string  `json:"hint"`
	Status      string   `json:"status"`
	LastGuess   *string  `json:"lastGuess"`
	Guesses     []string `json:"guesses"`
	Error       *string  `json:"error"`
	Attempts    int      `json:"attempts"`
	MaxAttempts int      `json:"maxAttempts"`
}

// Outcome is broadcast when a round ends; the word is revealed to everyone.
type Outcome struct {
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	Word        string `json:"word"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"maxAttempts"`
}
