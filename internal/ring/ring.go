// Package ring implements the lock-free single-producer/single-consumer
// sample buffer sitting between audio capture and the frame reader.
package ring

import "sync/atomic"

// Buffer is an SPSC ring of int16 PCM samples. Exactly one goroutine
// may call Write and exactly one goroutine may call Read; both methods
// are non-blocking. When the ring is full, Write drops the samples
// that do not fit and counts them rather than overwriting unread data.
type Buffer struct {
	mask  uint64
	buf   []int16
	head  atomic.Uint64 // next write index
	tail  atomic.Uint64 // next read index
	drops atomic.Uint64
}

// New creates a Buffer with capacity rounded up to the next power of
// two at or above capacity.
func New(capacity int) *Buffer {
	n := nextPow2(capacity)
	return &Buffer{
		mask: uint64(n - 1),
		buf:  make([]int16, n),
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Cap returns the buffer's capacity in samples.
func (b *Buffer) Cap() int { return len(b.buf) }

// Len returns the number of unread samples currently buffered.
func (b *Buffer) Len() int {
	return int(b.head.Load() - b.tail.Load())
}

// Drops returns the cumulative number of samples dropped because the
// ring was full at the time of Write.
func (b *Buffer) Drops() uint64 { return b.drops.Load() }

// Write copies as many samples from src into the ring as fit and
// returns that count. Samples beyond available capacity are dropped
// and counted, never blocking the caller.
func (b *Buffer) Write(src []int16) int {
	head := b.head.Load()
	tail := b.tail.Load()
	free := int(uint64(len(b.buf)) - (head - tail))

	n := len(src)
	if n > free {
		b.drops.Add(uint64(n - free))
		n = free
	}
	for i := 0; i < n; i++ {
		b.buf[(head+uint64(i))&b.mask] = src[i]
	}
	b.head.Store(head + uint64(n))
	return n
}

// Read copies up to len(dst) unread samples into dst and returns the
// count actually read. Returns 0 when the ring is empty.
func (b *Buffer) Read(dst []int16) int {
	head := b.head.Load()
	tail := b.tail.Load()
	avail := int(head - tail)

	n := len(dst)
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		dst[i] = b.buf[(tail+uint64(i))&b.mask]
	}
	b.tail.Store(tail + uint64(n))
	return n
}
