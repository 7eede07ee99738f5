package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// ErrReaderClosed is returned by ReadFrame once the bus will not deliver
// further frames.
var ErrReaderClosed = errors.New("socketcan receiver closed")

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

type CANReader interface {
	// ReadFrame blocks until a frame arrives or ctx is done.
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

type SocketCANWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

// NewSocketCANWriter dials iface ("can0", "vcan0", ...) for transmit.
func NewSocketCANWriter(ctx context.Context, iface string) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketCANWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	return w.tx.TransmitFrame(ctx, frame)
}

func (w *SocketCANWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

type rxResult struct {
	frame can.Frame
	err   error
}

// SocketCANReader owns one receive goroutine so a cancelled ReadFrame does
// not leave a blocked Receive behind.
type SocketCANReader struct {
	conn   net.Conn
	recv   *socketcan.Receiver
	frames chan rxResult
	done   chan struct{}
	once   sync.Once
	closed sync.Once
}

func NewSocketCANReader(ctx context.Context, iface string) (*SocketCANReader, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return newSocketCANReader(conn), nil
}

func newSocketCANReader(conn net.Conn) *SocketCANReader {
	return &SocketCANReader{
		conn:   conn,
		recv:   socketcan.NewReceiver(conn),
		frames: make(chan rxResult, 1),
		done:   make(chan struct{}),
	}
}

func (r *SocketCANReader) receive() {
	defer close(r.frames)
	for r.recv.Receive() {
		select {
		case r.frames <- rxResult{frame: r.recv.Frame()}:
		case <-r.done:
			return
		}
	}
	err := ErrReaderClosed
	if rerr := r.recv.Err(); rerr != nil {
		err = fmt.Errorf("%w: %v", ErrReaderClosed, rerr)
	}
	select {
	case r.frames <- rxResult{err: err}:
	case <-r.done:
	}
}

func (r *SocketCANReader) ReadFrame(ctx context.Context) (can.Frame, error) {
	r.once.Do(func() { go r.receive() })

	select {
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case res, ok := <-r.frames:
		if !ok {
			return can.Frame{}, ErrReaderClosed
		}
		return res.frame, res.err
	}
}

func (r *SocketCANReader) Close() error {
	r.closed.Do(func() { close(r.done) })
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
