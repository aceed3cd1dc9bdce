package node

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/driftworks/gust/src/config"
	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

type runningNode struct {
	node  *Node
	trans *transport.InmemTransport
	errCh chan error
}

// startBroadcastNode joins a node to the network, walks it through the init
// handshake, and runs it on its own routine. The init_ok ack is left on the
// client channel for the caller to consume or skip.
func startBroadcastNode(t *testing.T, network *transport.InmemNetwork, conf *config.Config, id string, ids []string) *runningNode {
	t.Helper()

	trans := network.Join(id)

	network.Deliver(request("c0", id, 1, &wire.Init{NodeID: id, NodeIDs: ids}))

	ident, err := OpenSession(trans, conf.Logger())
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	core := NewBroadcastCore(ident, trans, conf.Logger())
	n := NewNode(conf, ident, core, trans)

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run()
	}()

	return &runningNode{node: n, trans: trans, errCh: errCh}
}

func waitForExit(t *testing.T, rn *runningNode) error {
	t.Helper()
	select {
	case err := <-rn.errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the node to exit")
		return nil
	}
}

func TestNodeCleanShutdown(t *testing.T) {
	network := transport.NewInmemNetwork()
	conf := config.NewTestConfig(t)

	rn := startBroadcastNode(t, network, conf, "n1", []string{"n1"})

	initOk := expectClientEnvelope(t, network)
	if _, ok := initOk.Body.Payload.(*wire.InitOk); !ok {
		t.Fatalf("wrong payload type: %T", initOk.Body.Payload)
	}

	network.Deliver(request("c1", "n1", 2, &wire.Broadcast{Message: 5}))

	ack := expectClientEnvelope(t, network)
	if _, ok := ack.Body.Payload.(*wire.BroadcastOk); !ok {
		t.Fatalf("wrong payload type: %T", ack.Body.Payload)
	}

	// ending the input stream is the normal way a node terminates
	rn.trans.Close()

	if err := waitForExit(t, rn); err != nil {
		t.Fatalf("clean shutdown should not return an error: %v", err)
	}
}

func TestNodeIgnoresUnexpectedAck(t *testing.T) {
	network := transport.NewInmemNetwork()
	conf := config.NewTestConfig(t)

	rn := startBroadcastNode(t, network, conf, "n1", []string{"n1"})
	expectClientEnvelope(t, network) // init_ok

	network.Deliver(request("n2", "n1", 1, &wire.BroadcastOk{}))

	// the node is still alive and serving requests
	network.Deliver(request("c1", "n1", 2, &wire.Read{}))

	read := expectClientEnvelope(t, network)
	if _, ok := read.Body.Payload.(*wire.ReadOk); !ok {
		t.Fatalf("wrong payload type: %T", read.Body.Payload)
	}

	rn.trans.Close()

	if err := waitForExit(t, rn); err != nil {
		t.Fatalf("err: %v", err)
	}
}

func TestNodeStrictTermination(t *testing.T) {
	network := transport.NewInmemNetwork()
	conf := config.NewTestConfig(t)
	conf.Strict = true

	rn := startBroadcastNode(t, network, conf, "n1", []string{"n1"})
	expectClientEnvelope(t, network) // init_ok

	network.Deliver(request("n2", "n1", 1, &wire.BroadcastOk{}))

	err := waitForExit(t, rn)

	var unexpected *wire.UnexpectedPayloadError
	if !errors.As(err, &unexpected) {
		t.Fatalf("strict mode should surface the protocol violation, got %v", err)
	}
	if unexpected.Type != "broadcast_ok" {
		t.Fatalf("error should name broadcast_ok, not %s", unexpected.Type)
	}
}

// TestNodeConvergence runs three nodes on a line topology and checks that a
// value broadcast to any one of them eventually reaches all of them.
func TestNodeConvergence(t *testing.T) {
	network := transport.NewInmemNetwork()

	ids := []string{"n1", "n2", "n3"}

	topology := map[string][]string{
		"n1": {"n2"},
		"n2": {"n1", "n3"},
		"n3": {"n2"},
	}

	nodes := map[string]*runningNode{}
	for _, id := range ids {
		conf := config.NewTestConfig(t)
		conf.GossipInterval = 10 * time.Millisecond
		nodes[id] = startBroadcastNode(t, network, conf, id, ids)
	}

	for _, id := range ids {
		network.Deliver(request("c1", id, 2, &wire.Topology{Topology: topology}))
	}

	// one distinct value enters at each node
	for i, id := range ids {
		network.Deliver(request("c1", id, 3, &wire.Broadcast{Message: i + 1}))
	}

	expected := []int{1, 2, 3}
	converged := map[string]bool{}

	timeout := time.After(10 * time.Second)
	msgID := 100

	for len(converged) < len(ids) {
		select {
		case <-timeout:
			t.Fatalf("nodes did not converge, got %v", converged)
		default:
		}

		for _, id := range ids {
			if converged[id] {
				continue
			}
			msgID++
			network.Deliver(request("c1", id, msgID, &wire.Read{}))
		}

		// collect read_ok responses for a short window, skipping the acks
		// that share the client channel
		window := time.After(50 * time.Millisecond)
		for collecting := true; collecting; {
			select {
			case env := <-network.ClientCh():
				if readOk, ok := env.Body.Payload.(*wire.ReadOk); ok {
					if reflect.DeepEqual(readOk.Messages, expected) {
						converged[env.Src] = true
					}
				}
			case <-window:
				collecting = false
			}
		}
	}

	for _, rn := range nodes {
		rn.trans.Close()
	}
	for id, rn := range nodes {
		if err := waitForExit(t, rn); err != nil {
			t.Fatalf("node %s exited with error: %v", id, err)
		}
	}
}
