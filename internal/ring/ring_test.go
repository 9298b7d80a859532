package ring

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	b := New(8)
	in := []int16{1, 2, 3, 4}
	if n := b.Write(in); n != 4 {
		t.Fatalf("Write() = %d, want 4", n)
	}

	out := make([]int16, 4)
	if n := b.Read(out); n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestCapacityRoundsToPowerOfTwo(t *testing.T) {
	b := New(10)
	if got := b.Cap(); got != 16 {
		t.Errorf("Cap() = %d, want 16", got)
	}
}

func TestWriteDropsOnOverflowAndCounts(t *testing.T) {
	b := New(4)
	if n := b.Write([]int16{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Fatalf("Write() = %d, want 4", n)
	}
	if got := b.Drops(); got != 2 {
		t.Errorf("Drops() = %d, want 2", got)
	}
}

func TestReadEmptyReturnsZero(t *testing.T) {
	b := New(4)
	out := make([]int16, 4)
	if n := b.Read(out); n != 0 {
		t.Errorf("Read() on empty = %d, want 0", n)
	}
}

func TestPartialReadLeavesRemainder(t *testing.T) {
	b := New(8)
	b.Write([]int16{1, 2, 3, 4})

	first := make([]int16, 2)
	if n := b.Read(first); n != 2 {
		t.Fatalf("Read() = %d, want 2", n)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}

	second := make([]int16, 2)
	if n := b.Read(second); n != 2 {
		t.Fatalf("Read() = %d, want 2", n)
	}
	if second[0] != 3 || second[1] != 4 {
		t.Errorf("second = %v, want [3 4]", second)
	}
}

func TestWriteWrapsAroundAfterDrain(t *testing.T) {
	b := New(4)
	b.Write([]int16{1, 2, 3, 4})
	out := make([]int16, 4)
	b.Read(out)

	b.Write([]int16{5, 6})
	got := make([]int16, 2)
	b.Read(got)
	if got[0] != 5 || got[1] != 6 {
		t.Errorf("got = %v, want [5 6]", got)
	}
}
