package transport

import "sync"

// Local is an in-process Transport for single-process simulation of a
// multiparty protocol (tests, demos): every party is just an index into
// the caller's own goroutines, and nothing travels over a socket: each call
// only updates mutex-guarded statistics, and the gathering calls hand back
// the payloads they were given.
type Local struct {
	mu    sync.Mutex
	stats Stats
}

// NewLocal returns a fresh in-process transport with zeroed statistics.
func NewLocal() *Local { return &Local{} }

func (l *Local) account(payload []byte) {
	l.mu.Lock()
	l.stats.BytesSent += uint64(len(payload))
	l.stats.BytesReceived += uint64(len(payload))
	l.stats.Rounds++
	l.mu.Unlock()
}

func (l *Local) accountMany(payloads [][]byte) {
	for _, p := range payloads {
		l.account(p)
	}
}

// Broadcast is a no-op delivery in-process: the payload is only counted in
// the statistics and is not handed to any party, since there is only one
// process to deliver it to.
func (l *Local) Broadcast(c Communicator, sender Party, payload []byte) error {
	l.account(payload)
	return nil
}

func (l *Local) BroadcastMany(c Communicator, sender Party, payloads [][]byte) error {
	l.accountMany(payloads)
	return nil
}

// Gather returns payload wrapped once per party in c, simulating every
// party having sent the same local payload value to receiver.
func (l *Local) Gather(c Communicator, receiver Party, payload []byte) ([][]byte, error) {
	l.account(payload)
	out := make([][]byte, c.Size())
	for i := range out {
		out[i] = payload
	}
	return out, nil
}

func (l *Local) GatherMany(c Communicator, receiver Party, payloads [][]byte) ([][]byte, error) {
	l.accountMany(payloads)
	return payloads, nil
}

func (l *Local) AllGather(c Communicator, payload []byte) ([][]byte, error) {
	return l.Gather(c, 0, payload)
}

func (l *Local) AllGatherMany(c Communicator, payloads [][]byte) ([][]byte, error) {
	return l.GatherMany(c, 0, payloads)
}

// AllToAll returns payloads unchanged: in a single process every party's
// outgoing slot is already addressed to itself by construction of the
// caller's test harness.
func (l *Local) AllToAll(c Communicator, payloads [][]byte) ([][]byte, error) {
	l.accountMany(payloads)
	return payloads, nil
}

func (l *Local) AllToAllMany(c Communicator, payloads [][][]byte) ([][][]byte, error) {
	for _, p := range payloads {
		l.accountMany(p)
	}
	return payloads, nil
}

func (l *Local) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
