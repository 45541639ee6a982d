// Package model contains domain types passed between pipeline stages.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sample is one immutable dataset row: a feature vector and its target.
type Sample struct {
	Features []float64
	Target   float64
}

// Kind tells what a decoded message body carries.
type Kind int

const (
	// KindScalar marks a single numeric body (ground truth or prediction).
	KindScalar Kind = iota
	// KindVector marks a feature-vector body.
	KindVector
)

// Message is one decoded broker payload. ID preserves the sender's raw
// numeric token (a message with id 1000.0 correlates under the key "1000.0"),
// so producers minting string ids and legacy producers minting timestamp
// floats both pair correctly.
type Message struct {
	ID     string
	Kind   Kind
	Scalar float64
	Vector []float64
}

// ErrorRecord is one completed correlation, durable once appended to the log.
type ErrorRecord struct {
	ID            string
	GroundTruth   float64
	Prediction    float64
	AbsoluteError float64
}

// wire mirrors the JSON layout: {"id": ..., "body": ...}. Readers of the
// prediction topic also accept "prediction" in place of "body".
type wire struct {
	ID         json.RawMessage `json:"id"`
	Body       json.RawMessage `json:"body"`
	Prediction json.RawMessage `json:"prediction"`
}

// DecodeMessage parses a broker payload.
// Returns ErrMalformedPayload, ErrMissingID, or ErrMissingValue on bad input.
func DecodeMessage(data []byte) (Message, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return Message{}, err
	}

	value := w.Body
	if isAbsent(value) {
		value = w.Prediction
	}
	if isAbsent(value) {
		return Message{}, fmt.Errorf("%w: id %s", ErrMissingValue, id)
	}

	msg := Message{ID: id}
	if err := json.Unmarshal(value, &msg.Scalar); err == nil {
		msg.Kind = KindScalar
		return msg, nil
	}
	if err := json.Unmarshal(value, &msg.Vector); err == nil {
		msg.Kind = KindVector
		return msg, nil
	}
	return Message{}, fmt.Errorf("%w: value is neither a number nor a numeric array", ErrMalformedPayload)
}

// decodeID accepts a JSON string or number. Numbers keep their raw token as
// the correlation key so 1000.0 and "1000.0" pair with each other but 1000.0
// and 1000 do not collide by accident of formatting.
func decodeID(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", ErrMissingID
	}
	token := strings.TrimSpace(string(raw))
	if strings.HasPrefix(token, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if s == "" {
			return "", ErrMissingID
		}
		return s, nil
	}
	if _, err := strconv.ParseFloat(token, 64); err != nil {
		return "", fmt.Errorf("%w: id is neither a string nor a number", ErrMalformedPayload)
	}
	return token, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// EncodeScalar builds the wire form of a ground-truth or prediction message.
func EncodeScalar(id string, value float64) ([]byte, error) {
	return encode(id, json.RawMessage(FormatFloat(value)))
}

// EncodeVector builds the wire form of a feature-vector message.
func EncodeVector(id string, values []float64) ([]byte, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatFloat(v)
	}
	return encode(id, json.RawMessage("["+strings.Join(parts, ",")+"]"))
}

func encode(id string, body json.RawMessage) ([]byte, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return json.Marshal(struct {
		ID   json.RawMessage `json:"id"`
		Body json.RawMessage `json:"body"`
	}{ID: idToken(id), Body: body})
}

// idToken emits ids that parse as numbers (wallclock scheme) as bare JSON
// numbers, matching what legacy consumers of these topics expect.
func idToken(id string) json.RawMessage {
	if _, err := strconv.ParseFloat(id, 64); err == nil {
		return json.RawMessage(id)
	}
	quoted, _ := json.Marshal(id)
	return quoted
}

// Magnitudes outside this range render in exponent notation, matching the
// thresholds of the log's original consumers.
const (
	expNotationBelow = 1e-4
	expNotationFrom  = 1e16
)

// FormatFloat renders a float the way the log's original consumers expect:
// shortest round-trip form, always with a decimal point (42.0, not 42;
// 1000000.0, not 1e+06). Exponent notation only past the thresholds above.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if math.IsNaN(v) || (abs != 0 && (abs < expNotationBelow || abs >= expNotationFrom)) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
