// Package message defines the WebSocket frame type shared between the
// transport, the extractors, and handler responses.
package message

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/wsforge/wsforge/wserr"
)

// Type identifies the kind of a Message.
type Type int

const (
	Text Type = iota
	Binary
	Ping
	Pong
	Close
)

func (t Type) String() string {
	switch t {
	case Text:
		return "Text"
	case Binary:
		return "Binary"
	case Ping:
		return "Ping"
	case Pong:
		return "Pong"
	case Close:
		return "Close"
	default:
		return "Unknown"
	}
}

// Message is a single WebSocket frame: a kind tag plus payload. NewText and
// UnmarshalJSON reject a Text payload that is not valid UTF-8;
// NewTextString does not check its argument.
type Message struct {
	kind       Type
	data       []byte
	closeCode  uint16
	closeValid bool
}

// NewText constructs a Text message. It fails if data is not valid UTF-8;
// callers must not silently fall back to Binary on this error - it signals
// that the input was not, in fact, text.
func NewText(data []byte) (Message, error) {
	if !utf8.Valid(data) {
		return Message{}, wserr.InvalidMessage("text payload is not valid UTF-8")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return Message{kind: Text, data: cp}, nil
}

// NewTextString constructs a Text message from a Go string. It never fails
// and does not validate s: a string holding invalid UTF-8 bytes yields a
// Text message carrying those bytes unchanged.
func NewTextString(s string) Message {
	return Message{kind: Text, data: []byte(s)}
}

// NewBinary constructs a Binary message.
func NewBinary(data []byte) Message {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Message{kind: Binary, data: cp}
}

// NewPing constructs a Ping message carrying an arbitrary payload.
func NewPing(data []byte) Message {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Message{kind: Ping, data: cp}
}

// NewPong constructs a Pong message carrying an arbitrary payload.
func NewPong(data []byte) Message {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Message{kind: Pong, data: cp}
}

// NewClose constructs a Close message. Pass hasCode=false when there is no
// close code; an empty reason means no reason. The reason is kept whether
// or not a code is present.
func NewClose(code uint16, reason string, hasCode bool) Message {
	m := Message{kind: Close, closeCode: code, closeValid: hasCode}
	if reason != "" {
		m.data = []byte(reason)
	}
	return m
}

// Kind reports the Message's tag.
func (m Message) Kind() Type { return m.kind }

// IsText reports whether the Message is Text.
func (m Message) IsText() bool { return m.kind == Text }

// IsBinary reports whether the Message is Binary.
func (m Message) IsBinary() bool { return m.kind == Binary }

// IsPing reports whether the Message is Ping.
func (m Message) IsPing() bool { return m.kind == Ping }

// IsPong reports whether the Message is Pong.
func (m Message) IsPong() bool { return m.kind == Pong }

// IsClose reports whether the Message is Close.
func (m Message) IsClose() bool { return m.kind == Close }

// AsText returns the text view and true if the Message is Text, else
// ("", false). The payload is not re-validated.
func (m Message) AsText() (string, bool) {
	if m.kind != Text {
		return "", false
	}
	return string(m.data), true
}

// AsBytes returns the raw payload regardless of kind.
func (m Message) AsBytes() []byte {
	cp := make([]byte, len(m.data))
	copy(cp, m.data)
	return cp
}

// CloseCode returns the close code and whether one was present.
func (m Message) CloseCode() (uint16, bool) {
	return m.closeCode, m.closeValid
}

// CloseReason returns the close reason string, if any.
func (m Message) CloseReason() string {
	if m.kind != Close {
		return ""
	}
	return string(m.data)
}

// wireMessage is the JSON representation used when a Message crosses a
// process boundary (the cross-instance bridge). Data is base64-encoded by
// encoding/json's []byte handling, so binary payloads round-trip exactly.
type wireMessage struct {
	Kind       Type   `json:"kind"`
	Data       []byte `json:"data,omitempty"`
	CloseCode  uint16 `json:"close_code,omitempty"`
	CloseValid bool   `json:"close_valid,omitempty"`
}

// MarshalJSON implements json.Marshaler so a Message can be sent across a
// bridge without exposing its fields.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{
		Kind:       m.kind,
		Data:       m.data,
		CloseCode:  m.closeCode,
		CloseValid: m.closeValid,
	})
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Kind == Text && !utf8.Valid(w.Data) {
		return wserr.InvalidMessage("text payload is not valid UTF-8")
	}
	m.kind = w.Kind
	m.data = w.Data
	m.closeCode = w.CloseCode
	m.closeValid = w.CloseValid
	return nil
}

// JSON decodes the Text payload into v. Fails with KindInvalidMessage if the
// message is not Text, or KindJSONDecode if the payload is not valid JSON
// for v.
func (m Message) JSON(v any) error {
	text, ok := m.AsText()
	if !ok {
		return wserr.InvalidMessage("cannot decode JSON from a %s message", m.kind)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return wserr.Wrap(wserr.KindJSONDecode, err, "decoding message payload")
	}
	return nil
}
