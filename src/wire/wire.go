// Package wire defines the line-delimited JSON protocol spoken between a node
// and the test harness.
//
// Every record is an Envelope: a source node id, a destination node id, and a
// Body. The Body carries two optional message ids and a payload which is
// flattened into the same JSON object and discriminated by its "type" field:
//
//	{"src":"c1","dest":"n1","body":{"msg_id":1,"type":"broadcast","message":5}}
//
// The set of payload variants is closed and enumerated in payload.go.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the outer structure of every protocol message.
type Envelope struct {
	Src  string `json:"src"`
	Dst  string `json:"dest"`
	Body Body   `json:"body"`
}

// Body carries the message ids and the tagged payload. MsgID and InReplyTo are
// pointers because the protocol allows both to be absent; gossip messages, for
// instance, carry neither.
type Body struct {
	MsgID     *int
	InReplyTo *int
	Payload   Payload
}

// Response builds the reply to a request envelope. Src and Dst are swapped and
// InReplyTo is set from the request's MsgID.
func (e *Envelope) Response(msgID *int, p Payload) *Envelope {
	return &Envelope{
		Src: e.Dst,
		Dst: e.Src,
		Body: Body{
			MsgID:     msgID,
			InReplyTo: e.Body.MsgID,
			Payload:   p,
		},
	}
}

type bodyHead struct {
	MsgID     *int   `json:"msg_id"`
	InReplyTo *int   `json:"in_reply_to"`
	Type      string `json:"type"`
}

// MarshalJSON flattens the payload fields into the body object next to the
// ids and the type tag.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, fmt.Errorf("body has no payload")
	}

	raw, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	fields["type"], _ = json.Marshal(b.Payload.Type())
	if b.MsgID != nil {
		fields["msg_id"], _ = json.Marshal(*b.MsgID)
	}
	if b.InReplyTo != nil {
		fields["in_reply_to"], _ = json.Marshal(*b.InReplyTo)
	}

	return json.Marshal(fields)
}

// UnmarshalJSON reads the type tag first, then decodes the remaining fields
// into the corresponding payload variant.
func (b *Body) UnmarshalJSON(data []byte) error {
	var head bodyHead
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	if head.Type == "" {
		return fmt.Errorf("body has no type field")
	}

	payload, err := newPayload(head.Type)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return err
	}

	b.MsgID = head.MsgID
	b.InReplyTo = head.InReplyTo
	b.Payload = payload

	return nil
}

// Decode parses one line into an Envelope. Failures are reported as a
// *ParseError and leave no residual state, so a caller may keep reading
// subsequent lines.
func Decode(line []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(line, env); err != nil {
		return nil, &ParseError{Line: string(line), Err: err}
	}

	if env.Src == "" || env.Dst == "" {
		return nil, &ParseError{
			Line: string(line),
			Err:  fmt.Errorf("envelope is missing src or dest"),
		}
	}

	// a missing body key never reaches Body.UnmarshalJSON, so it has to be
	// caught here
	if env.Body.Payload == nil {
		return nil, &ParseError{
			Line: string(line),
			Err:  fmt.Errorf("envelope is missing body"),
		}
	}

	return env, nil
}

// Encode serializes an Envelope to a single line terminated by exactly one
// newline character.
func Encode(env *Envelope) ([]byte, error) {
	buf, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

// ParseError reports a line that could not be decoded into an Envelope.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse message %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnexpectedPayloadError reports a payload variant that a node is never
// supposed to receive, such as one of its own acknowledgements.
type UnexpectedPayloadError struct {
	Type string
}

func (e *UnexpectedPayloadError) Error() string {
	return fmt.Sprintf("unexpected inbound payload of type %q", e.Type)
}
