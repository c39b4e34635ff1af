// Package comm carries Typed messages between a car and its drivers.
//
// A transport only needs to move whole packets: mqtt, websocket and
// the in-process Loopback all implement PacketReadWriter. Pipe runs
// the codec on top, Registrar serves the car side of one transport,
// Hub serves many, and ControllerConn is the driver side.
package comm

// PacketReader reads whole packets.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes whole packets.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is a packet transport.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
