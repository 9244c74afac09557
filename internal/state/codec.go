package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEntry reports a serialized entry that is neither a boundary nor
// a well formed sample.
var ErrInvalidEntry = errors.New("invalid log entry")

// boundaryToken is the serialized form of a Boundary.
const boundaryToken = "break"

type wireSample struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Time int64   `json:"time"`
}

// wireSampleIn also accepts the older {"coords":[x,y],"time":t} shape.
type wireSampleIn struct {
	X      *float64    `json:"x"`
	Y      *float64    `json:"y"`
	Coords []float64   `json:"coords"`
	Time   json.Number `json:"time"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindBoundary:
		return json.Marshal(boundaryToken)
	case KindSample:
		if !e.Sample.Point.Finite() {
			return nil, fmt.Errorf("%w: non-finite sample %v", ErrInvalidEntry, e.Sample.Point)
		}
		return json.Marshal(wireSample{X: e.Sample.Point.X, Y: e.Sample.Point.Y, Time: e.Sample.Time})
	}
	return nil, fmt.Errorf("%w: kind %d", ErrInvalidEntry, e.Kind)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tok string
		if err := json.Unmarshal(data, &tok); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		if tok != boundaryToken {
			return fmt.Errorf("%w: unknown token %q", ErrInvalidEntry, tok)
		}
		*e = Boundary
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var in wireSampleIn
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	var p Point
	switch {
	case in.X != nil && in.Y != nil:
		p = Pt(*in.X, *in.Y)
	case len(in.Coords) == 2:
		p = Pt(in.Coords[0], in.Coords[1])
	default:
		return fmt.Errorf("%w: missing coordinates in %s", ErrInvalidEntry, data)
	}
	if in.Time == "" {
		return fmt.Errorf("%w: missing time in %s", ErrInvalidEntry, data)
	}
	t, err := in.Time.Int64()
	if err != nil {
		return fmt.Errorf("%w: time %q is not an integer", ErrInvalidEntry, in.Time)
	}
	*e = SampleEntry(Sample{Point: p, Time: t})
	return nil
}

// Encode serializes l as a JSON array of "break" tokens and {x, y, time}
// objects.
func Encode(l Log) ([]byte, error) {
	if l == nil {
		l = Log{}
	}
	data, err := json.Marshal([]Entry(l))
	if err != nil {
		return nil, fmt.Errorf("encode log: %w", err)
	}
	return data, nil
}

// Decode parses the output of Encode. A JSON null or empty input decodes to
// an empty Log.
func Decode(data []byte) (Log, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Log{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}
	return Log(entries), nil
}
