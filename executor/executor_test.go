package executor

import "testing"

func TestGoroutinePoolSubmit(t *testing.T) {
	pool := NewGoroutinePool(4, "test-pool")
	buf := make([]uint64, 100)
	acc := pool.NewAccessor(buf)

	pool.Submit(len(buf), func(i int) {
		acc.Set(i, uint64(i*i))
	}).Wait()

	for i := range buf {
		if got := acc.At(i); got != uint64(i*i) {
			t.Fatalf("buf[%d] = %d, want %d", i, got, i*i)
		}
	}
}

func TestGoroutinePoolDevice(t *testing.T) {
	pool := NewGoroutinePool(8, "cpu")
	d := pool.Device()
	if d.Name != "cpu" || d.WorkGroupSize != 8 {
		t.Fatalf("Device() = %+v, want Name=cpu WorkGroupSize=8", d)
	}
}

func TestGoroutinePoolEmptyRange(t *testing.T) {
	pool := NewGoroutinePool(4, "test-pool")
	called := false
	pool.Submit(0, func(i int) { called = true }).Wait()
	if called {
		t.Fatal("Submit(0, ...) must not invoke fn")
	}
}
