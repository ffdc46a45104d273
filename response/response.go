// Package response converts a handler's return value into the outbound
// message it represents: a type switch over the concrete Go return types a
// handler may produce.
package response

import (
	"encoding/json"

	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/wserr"
)

// Empty is the "no message" response: a handler that returns Empty
// produces no outbound frame.
type Empty struct{}

// jsonResponse is an unexported marker so Convert can recognize every
// instantiation of the generic JSONResponse[T] type via a type switch,
// without knowing T ahead of time.
type jsonResponse interface {
	marshalJSON() ([]byte, error)
}

// JSONResponse wraps a value to be sent back as a Text frame containing its
// JSON encoding.
type JSONResponse[T any] struct {
	Value T
}

func (r JSONResponse[T]) marshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// Convert turns a handler's return value into the message it represents, or
// nil if the value maps to no outbound frame. Recognized types: Empty,
// message.Message, string, []byte, and any JSONResponse[T].
func Convert(v any) (*message.Message, error) {
	switch val := v.(type) {
	case Empty:
		return nil, nil
	case message.Message:
		return &val, nil
	case string:
		m := message.NewTextString(val)
		return &m, nil
	case []byte:
		m := message.NewBinary(val)
		return &m, nil
	case jsonResponse:
		data, err := val.marshalJSON()
		if err != nil {
			return nil, wserr.Wrap(wserr.KindHandler, err, "failed to encode JSON response")
		}
		m := message.NewTextString(string(data))
		return &m, nil
	default:
		return nil, wserr.Handler("handler returned a value with no recognized response conversion")
	}
}
