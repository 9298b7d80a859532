package clock

import (
	"testing"
	"time"
)

func TestVirtualAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewVirtual(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	c.Advance(5 * time.Second)
	want := start.Add(5 * time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestVirtualSleepAdvances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewVirtual(start)

	c.Sleep(2 * time.Second)
	want := start.Add(2 * time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() after Sleep = %v, want %v", got, want)
	}
}

func TestVirtualSet(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewVirtual(start)

	pin := start.Add(time.Hour)
	c.Set(pin)
	if got := c.Now(); !got.Equal(pin) {
		t.Errorf("Now() after Set = %v, want %v", got, pin)
	}
}
