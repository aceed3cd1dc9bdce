package node

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/driftworks/gust/src/common"
	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

func TestEchoRoundTrip(t *testing.T) {
	logger := common.NewTestLogger(t).WithField("test", "echo")

	network := transport.NewInmemNetwork()
	trans := network.Join("n1")

	ident := &Identity{NodeID: "n1", nextMsgID: 1}
	core := NewEchoCore(ident, trans, logger)

	if err := core.HandleMessage(request("c1", "n1", 1, &wire.Echo{Echo: "hello there"})); err != nil {
		t.Fatalf("err: %v", err)
	}

	resp := expectClientEnvelope(t, network)
	echoOk, ok := resp.Body.Payload.(*wire.EchoOk)
	if !ok {
		t.Fatalf("wrong payload type: %T", resp.Body.Payload)
	}
	if echoOk.Echo != "hello there" {
		t.Fatalf("wrong echo content: %s", echoOk.Echo)
	}
	if resp.Body.InReplyTo == nil || *resp.Body.InReplyTo != 1 {
		t.Fatalf("wrong in_reply_to: %v", resp.Body.InReplyTo)
	}

	err := core.HandleMessage(request("c1", "n1", 2, &wire.EchoOk{Echo: "hello there"}))
	var unexpected *wire.UnexpectedPayloadError
	if !errors.As(err, &unexpected) {
		t.Fatalf("echo_ok should be rejected, got %v", err)
	}
}

func TestGenerateUniqueIDs(t *testing.T) {
	logger := common.NewTestLogger(t).WithField("test", "unique-id")

	network := transport.NewInmemNetwork()
	trans := network.Join("n1")

	ident := &Identity{NodeID: "n1", nextMsgID: 1}
	core := NewUniqueIDCore(ident, trans, logger)

	seen := map[string]bool{}

	for i := 0; i < 10; i++ {
		if err := core.HandleMessage(request("c1", "n1", i+1, &wire.Generate{})); err != nil {
			t.Fatalf("err: %v", err)
		}

		resp := expectClientEnvelope(t, network)
		genOk, ok := resp.Body.Payload.(*wire.GenerateOk)
		if !ok {
			t.Fatalf("wrong payload type: %T", resp.Body.Payload)
		}

		if _, err := uuid.Parse(genOk.ID); err != nil {
			t.Fatalf("id %q is not a valid uuid: %v", genOk.ID, err)
		}

		if seen[genOk.ID] {
			t.Fatalf("id %q was generated twice", genOk.ID)
		}
		seen[genOk.ID] = true
	}
}
