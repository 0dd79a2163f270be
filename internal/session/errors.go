package session

import (
	"errors"

	"github.com/DoyleJ11/devine-backend/internal/engine"
)

const (
	CodeBadInput         = "BAD_INPUT"
	CodeNoRoom           = "NO_ROOM"
	CodeHintWordIncluded = "HINT_WORD_INCLUDED"
	CodeHint3SeqIncluded = "HINT_3SEQ_INCLUDED"
)

// Code maps an error from Join or Hint onto the wire code and the message
// shown to the player.
func Code(err error) (code, message string) {
	switch {
	case errors.Is(err, engine.ErrBadInput):
		return CodeBadInput, "Salle, rôle ou texte manquant."
	case errors.Is(err, engine.ErrHintWordIncluded):
		return CodeHintWordIncluded, "Indice trop révélateur : contient le mot."
	case errors.Is(err, engine.ErrHint3SeqIncluded):
		return CodeHint3SeqIncluded, "Indice trop révélateur : ≥ 3 lettres consécutives du mot."
	case errors.Is(err, ErrNoRoom):
		return CodeNoRoom, "Salle introuvable."
	default:
		return CodeNoRoom, "Salle indisponible."
	}
}
