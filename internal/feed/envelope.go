package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gift-battle/internal/battle"
)

var (
	ErrMissingUsername = errors.New("username is required")
	ErrInvalidTeam     = errors.New("team must be fire, ice or empty")
)

// Envelope is the wire shape of one viewer event on the stream.
type Envelope struct {
	Type      string     `json:"type"`
	Username  string     `json:"username"`
	Team      *string    `json:"team"`
	Message   string     `json:"message,omitempty"`
	GiftName  string     `json:"gift_name,omitempty"`
	GiftValue int        `json:"gift_value,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Decode parses and validates a stream payload.
func Decode(data []byte) (battle.Incoming, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return battle.Incoming{}, fmt.Errorf("decoding event: %w", err)
	}
	return envelope.Incoming()
}

// Incoming validates the envelope and converts it for the round machine. Negative or
// oversized gift values are data errors and never reach scoring.
func (e Envelope) Incoming() (battle.Incoming, error) {
	kind := battle.ActivityKind(strings.ToLower(strings.TrimSpace(e.Type)))
	switch kind {
	case battle.ActivityJoined, battle.ActivityComment, battle.ActivityGift:
	default:
		return battle.Incoming{}, fmt.Errorf("%w: %q", battle.ErrUnknownActivity, e.Type)
	}
	username := strings.TrimSpace(e.Username)
	if username == "" {
		return battle.Incoming{}, ErrMissingUsername
	}
	team := battle.TeamNone
	if e.Team != nil {
		parsed, ok := battle.ParseTeam(strings.ToLower(strings.TrimSpace(*e.Team)))
		if !ok {
			return battle.Incoming{}, fmt.Errorf("%w: %q", ErrInvalidTeam, *e.Team)
		}
		team = parsed
	}
	in := battle.Incoming{
		Kind:     kind,
		Username: username,
		Team:     team,
	}
	switch kind {
	case battle.ActivityComment:
		in.Message = e.Message
	case battle.ActivityGift:
		if e.GiftValue < 0 {
			return battle.Incoming{}, battle.ErrNegativeGift
		}
		if e.GiftValue > battle.MaxGiftValue {
			return battle.Incoming{}, battle.ErrGiftTooLarge
		}
		in.GiftName = e.GiftName
		in.GiftValue = e.GiftValue
	}
	if e.Timestamp != nil {
		in.At = e.Timestamp.UTC()
	}
	return in, nil
}

// Encode is the inverse of Decode, used by publishers.
func Encode(in battle.Incoming) ([]byte, error) {
	envelope := Envelope{
		Type:      string(in.Kind),
		Username:  in.Username,
		Message:   in.Message,
		GiftName:  in.GiftName,
		GiftValue: in.GiftValue,
	}
	if in.Team != battle.TeamNone {
		team := string(in.Team)
		envelope.Team = &team
	}
	if !in.At.IsZero() {
		at := in.At.UTC()
		envelope.Timestamp = &at
	}
	return json.Marshal(envelope)
}
