package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

func TestSocketCANReader_PeerClosed(t *testing.T) {
	local, peer := net.Pipe()
	r := newSocketCANReader(local)
	defer r.Close()

	want := can.Frame{ID: 0x1E1, Length: 2, Data: can.Data{0x06}}
	go func() {
		_ = socketcan.NewTransmitter(peer).TransmitFrame(context.Background(), want)
		_ = peer.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := r.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// every later read fails fast with the sentinel instead of blocking
	for i := 0; i < 3; i++ {
		_, err = r.ReadFrame(ctx)
		assert.ErrorIs(t, err, ErrReaderClosed)
	}
	assert.NoError(t, ctx.Err())
}

func TestSocketCANReader_ContextDone(t *testing.T) {
	local, peer := net.Pipe()
	defer peer.Close()
	r := newSocketCANReader(local)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
