package engine

import (
	"errors"
	"strings"
)

var ErrBadInput = errors.New("missing required field")
var ErrRoleTaken = errors.New("role already taken")
var ErrNotRunning = errors.New("round not running")
var ErrHintWordIncluded = errors.New("hint contains the word")
var ErrHint3SeqIncluded = errors.New("hint contains three consecutive letters of the word")
var ErrUnsupportedCommand = errors.New("unsupported command")

const DefaultMaxAttempts = 3

type Role string

const (
	RoleGiver   Role = "giver"
	RoleGuesser Role = "guesser"
)

func (r Role) Valid() bool {
	return r == RoleGiver || r == RoleGuesser
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusEnded   Status = "ended"
)

type Reason string

const (
	ReasonWin  Reason = "win"
	ReasonLose Reason = "lose"
)

// State is the game state of one room. GiverID and GuesserID hold
// connection ids, "" meaning the seat is free.
type State struct {
	Word        string
	Status      Status
	GiverID     string
	GuesserID   string
	Attempts    int
	MaxAttempts int
}

type CommandType string

const (
	CmdStart  CommandType = "Start"
	CmdHint   CommandType = "Hint"
	CmdGuess  CommandType = "Guess"
	CmdGiveUp CommandType = "GiveUp"
)

/*
	CmdStart  -> EvtRoundStarted
	CmdHint   -> EvtHintAccepted (rejections come back as errors, never events)
	CmdGuess  -> EvtGuessed -> EvtRoundEnded (win, or lose once attempts run out)
	CmdGiveUp -> EvtRoundEnded (lose)
*/

type Command struct {
	Type CommandType
	Text string
}

type EventType string

const (
	EvtRoundStarted EventType = "RoundStarted"
	EvtHintAccepted EventType = "HintAccepted"
	EvtGuessed      EventType = "Guessed"
	EvtRoundEnded   EventType = "RoundEnded"
)

type Event struct {
	Type    EventType
	Text    string
	Correct bool
	Reason  Reason
}

// Apply runs one command against s. The returned state is always the one to
// keep, including when err is non-nil: a rejected hint still promotes an
// idle room to running.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStart:
		word := strings.ToUpper(strings.TrimSpace(cmd.Text))
		if word == "" {
			return nil, s, ErrBadInput
		}
		next := s
		next.Word = word
		next.Status = StatusRunning
		next.Attempts = 0
		if next.MaxAttempts < 1 {
			next.MaxAttempts = DefaultMaxAttempts
		}
		return []Event{{Type: EvtRoundStarted}}, next, nil

	case CmdHint:
		if cmd.Text == "" {
			return nil, s, ErrBadInput
		}
		next := s.promote()
		if err := ValidateHint(cmd.Text, next.Word); err != nil {
			return nil, next, err
		}
		return []Event{{Type: EvtHintAccepted, Text: cmd.Text}}, next, nil

	case CmdGuess:
		if cmd.Text == "" {
			return nil, s, ErrBadInput
		}
		next := s.promote()
		if next.Status != StatusRunning {
			return nil, next, ErrNotRunning
		}

		correct := Normalize(cmd.Text) == Normalize(next.Word)
		events := []Event{{Type: EvtGuessed, Text: cmd.Text, Correct: correct}}
		if correct {
			next.Status = StatusEnded
			return append(events, Event{Type: EvtRoundEnded, Reason: ReasonWin}), next, nil
		}

		next.Attempts++
		if next.Attempts >= next.MaxAttempts {
			next.Status = StatusEnded
			events = append(events, Event{Type: EvtRoundEnded, Reason: ReasonLose})
		}
		return events, next, nil

	case CmdGiveUp:
		next := s
		next.Status = StatusEnded
		return []Event{{Type: EvtRoundEnded, Reason: ReasonLose}}, next, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// promote is the idle auto-start guard applied by the first hint or guess.
func (s State) promote() State {
	if s.Status == StatusIdle {
		s.Status = StatusRunning
		s.Attempts = 0
	}
	return s
}
