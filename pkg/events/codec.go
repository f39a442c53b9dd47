package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when decoding a record whose type is not a known
// event kind.
var ErrUnknownKind = errors.New("unknown event kind")

// Record is the persisted shape of an event.
type Record struct {
	Type  Kind            `json:"type"`
	Event json.RawMessage `json:"event"`
}

// Marshal encodes e as a persisted record.
func Marshal(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.Kind(), err)
	}
	return json.Marshal(Record{Type: e.Kind(), Event: payload})
}

// Unmarshal decodes a single persisted record.
func Unmarshal(data []byte) (Event, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return FromRecord(rec)
}

// FromRecord decodes the payload of rec according to its type.
func FromRecord(rec Record) (Event, error) {
	switch rec.Type {
	case KindPlayerNamed:
		return decode[PlayerNamed](rec)
	case KindSeatTaken:
		return decode[SeatTaken](rec)
	case KindSeatEmptied:
		return decode[SeatEmptied](rec)
	case KindPlayerGivenChips:
		return decode[PlayerGivenChips](rec)
	case KindRoundStarted:
		return decode[RoundStarted](rec)
	case KindHandDealt:
		return decode[HandDealt](rec)
	case KindHandFolded:
		return decode[HandFolded](rec)
	case KindBetPlaced:
		return decode[BetPlaced](rec)
	case KindBettingRoundClosed:
		return decode[BettingRoundClosed](rec)
	case KindFlopDealt:
		return decode[FlopDealt](rec)
	case KindTurnDealt:
		return decode[TurnDealt](rec)
	case KindRiverDealt:
		return decode[RiverDealt](rec)
	case KindHandWon:
		return decode[HandWon](rec)
	case KindPlayerBankrupted:
		return decode[PlayerBankrupted](rec)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Type)
}

func decode[T Event](rec Record) (Event, error) {
	var ev T
	if len(rec.Event) == 0 {
		return nil, fmt.Errorf("%s: missing payload", rec.Type)
	}
	if err := json.Unmarshal(rec.Event, &ev); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", rec.Type, err)
	}
	return ev, nil
}

// UnmarshalList decodes a JSON array of records.
func UnmarshalList(data []byte) ([]Event, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}
	out := make([]Event, 0, len(recs))
	for i, rec := range recs {
		ev, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
