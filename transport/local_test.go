package transport

import "testing"

func TestLocalBroadcastStats(t *testing.T) {
	l := NewLocal()
	c := NewCommunicator(0, 1, 2)

	if err := l.Broadcast(c, 0, []byte("hello")); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	stats := l.Stats()
	if stats.BytesSent != 5 || stats.Rounds != 1 {
		t.Fatalf("Stats() = %+v, want BytesSent=5 Rounds=1", stats)
	}
}

func TestLocalGatherReturnsOnePerParty(t *testing.T) {
	l := NewLocal()
	c := NewCommunicator(0, 1, 2)

	got, err := l.Gather(c, 0, []byte("x"))
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(got) != c.Size() {
		t.Fatalf("Gather returned %d payloads, want %d", len(got), c.Size())
	}
}

func TestCommunicatorIndex(t *testing.T) {
	c := NewCommunicator(5, 6, 7)
	if c.Index(6) != 1 {
		t.Fatalf("Index(6) = %d, want 1", c.Index(6))
	}
	if c.Index(99) != -1 {
		t.Fatalf("Index(99) = %d, want -1", c.Index(99))
	}
}
