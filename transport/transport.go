// Package transport defines the network layer the core consumes (spec
// §6.2): a party identifier, a communicator (ordered set of party
// identifiers known at compile time), and a transport offering broadcast/
// gather/all_gather/all_to_all, each with single- and multi-message
// variants, plus byte/round statistics. An in-process implementation
// (local.go) and the wire payload format (wire.go, §6.3) are provided
// alongside the interfaces.
package transport

import "fmt"

// Party is an integer party identifier.
type Party int

// Communicator is an ordered, compile-time-fixed set of party identifiers.
type Communicator struct {
	parties []Party
}

// NewCommunicator returns a Communicator over parties, in the given order.
func NewCommunicator(parties ...Party) Communicator {
	cp := make([]Party, len(parties))
	copy(cp, parties)
	return Communicator{parties: cp}
}

// Parties returns the communicator's member parties, in order.
func (c Communicator) Parties() []Party { return c.parties }

// Size returns the number of parties in the communicator.
func (c Communicator) Size() int { return len(c.parties) }

// Index returns p's position in the communicator, or -1 if p is not a
// member.
func (c Communicator) Index(p Party) int {
	for i, q := range c.parties {
		if q == p {
			return i
		}
	}
	return -1
}

// ErrorKind enumerates the network/messaging error taxonomy from spec §7.
type ErrorKind int

const (
	ErrInvalidHandle ErrorKind = iota
	ErrVersionMismatch
	ErrChannelBroken
	ErrConnectionReset
	ErrConnectionTimedOut
	ErrConnectionClosed
	ErrStreamTooLong
	ErrStreamStopped
	ErrStreamRejected
	ErrSizeMismatch
	ErrSessionMismatch
	ErrSignatureVerification
	ErrUnknownSender
	ErrInconsistentCollective
	ErrMultiple
)

// Error is a typed transport failure; the caller must handle it, no silent
// retry happens at this layer (spec §7).
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("transport: %s", e.Message) }

// Stats reports a transport's cumulative byte/round counters (spec §6.2).
type Stats struct {
	BytesSent     uint64
	BytesReceived uint64
	Rounds        uint64
}

// Transport is the network surface the core consumes (spec §6.2).
type Transport interface {
	// Broadcast sends payload from sender to every other party in c.
	Broadcast(c Communicator, sender Party, payload []byte) error
	// BroadcastMany is Broadcast's multi-message variant.
	BroadcastMany(c Communicator, sender Party, payloads [][]byte) error
	// Gather collects one payload from every party in c at receiver.
	// Non-receiver calls return the payload they contributed with no
	// aggregate result; receiver calls return the ordered collection.
	Gather(c Communicator, receiver Party, payload []byte) ([][]byte, error)
	// GatherMany is Gather's multi-message variant.
	GatherMany(c Communicator, receiver Party, payloads [][]byte) ([][]byte, error)
	// AllGather collects every party's payload and returns it to all of
	// them, in communicator order.
	AllGather(c Communicator, payload []byte) ([][]byte, error)
	// AllGatherMany is AllGather's multi-message variant.
	AllGatherMany(c Communicator, payloads [][]byte) ([][]byte, error)
	// AllToAll exchanges payloads[i] (destined for c.Parties()[i]) among
	// every party in c, returning the payloads this party received, in
	// sender order.
	AllToAll(c Communicator, payloads [][]byte) ([][]byte, error)
	// AllToAllMany is AllToAll's multi-message variant.
	AllToAllMany(c Communicator, payloads [][][]byte) ([][][]byte, error)
	// Stats returns cumulative byte/round counters for this transport.
	Stats() Stats
}
