package comm

import (
	"context"
	"io"
	"sync"
)

// LoopbackBacklog is the number of packets buffered in each direction.
const LoopbackBacklog = 16

type loopbackEnd struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// Loopback creates two connected in-process PacketReadWriters. Packets
// written to one end are read from the other. Closing either end
// closes both.
func Loopback() (PacketReadWriter, PacketReadWriter) {
	a, b := make(chan []byte, LoopbackBacklog), make(chan []byte, LoopbackBacklog)
	done, once := make(chan struct{}), &sync.Once{}
	return &loopbackEnd{in: a, out: b, done: done, once: once},
		&loopbackEnd{in: b, out: a, done: done, once: once}
}

// ReadPacket implements PacketReader.
func (e *loopbackEnd) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-e.in:
		return pkt, nil
	case <-e.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (e *loopbackEnd) WritePacket(pkt []byte) error {
	select {
	case e.out <- pkt:
		return nil
	case <-e.done:
		return io.ErrClosedPipe
	}
}

// Run implements Runnable. The loopback is closed once ctx is done.
func (e *loopbackEnd) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-e.done:
	}
	e.Close()
	return nil
}

// Close implements io.Closer.
func (e *loopbackEnd) Close() error {
	e.once.Do(func() { close(e.done) })
	return nil
}
