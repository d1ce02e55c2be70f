package gpu

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeviceBufferLifecycle(t *testing.T) {
	d := NewMemoryDevice()

	h, err := d.CreateBuffer(BufferDescriptor{Label: "positions", Usage: UsageVertex, Data: make([]byte, 36)})
	require.NoError(t, err)
	assert.True(t, h.Valid())
	assert.Equal(t, 36, d.Used())

	r, ok := d.Resource(h)
	require.True(t, ok)
	assert.Equal(t, KindBuffer, r.Kind)
	assert.Equal(t, "positions", r.Label)

	require.NoError(t, d.Release(h))
	assert.Equal(t, 0, d.Used())
	assert.Empty(t, d.Live())

	err = d.Release(h)
	assert.True(t, errors.Is(err, ErrUnknownHandle))
	assert.NoError(t, d.Release(0))
}

func TestMemoryDeviceHandlesAreNotReused(t *testing.T) {
	d := NewMemoryDevice()
	a, err := d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: []byte{1}})
	require.NoError(t, err)
	require.NoError(t, d.Release(a))
	b, err := d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: []byte{1}})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMemoryDeviceTextureValidation(t *testing.T) {
	d := NewMemoryDevice()

	_, err := d.CreateTexture(TextureDescriptor{Width: 2, Height: 2, Pixels: make([]byte, 4)})
	assert.True(t, errors.Is(err, ErrInvalidDescriptor))

	h, err := d.CreateTexture(TextureDescriptor{Label: "white", Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}})
	require.NoError(t, err)
	r, _ := d.Resource(h)
	assert.Equal(t, KindTexture, r.Kind)
	assert.Equal(t, 1, r.Width)
}

func TestMemoryDeviceVertexLayoutChecksBuffers(t *testing.T) {
	d := NewMemoryDevice()
	vb, err := d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: make([]byte, 12)})
	require.NoError(t, err)
	ib, err := d.CreateBuffer(BufferDescriptor{Usage: UsageIndex, Data: make([]byte, 6)})
	require.NoError(t, err)

	_, err = d.CreateVertexLayout(VertexLayoutDescriptor{
		Attributes: []VertexAttribute{{Slot: 0, Buffer: ib, ComponentType: document.ComponentFloat32, Components: 3}},
	})
	assert.True(t, errors.Is(err, ErrInvalidDescriptor), "index buffer bound as attribute")

	_, err = d.CreateVertexLayout(VertexLayoutDescriptor{
		Attributes: []VertexAttribute{{Slot: 0, Buffer: 99}},
	})
	assert.True(t, errors.Is(err, ErrUnknownHandle))

	h, err := d.CreateVertexLayout(VertexLayoutDescriptor{
		Label:       "tri",
		Attributes:  []VertexAttribute{{Slot: 0, Buffer: vb, ComponentType: document.ComponentFloat32, Components: 3, Stride: 12}},
		IndexBuffer: ib,
		IndexType:   document.ComponentUint16,
	})
	require.NoError(t, err)
	r, _ := d.Resource(h)
	require.NotNil(t, r.Layout)
	assert.Equal(t, ib, r.Layout.IndexBuffer)
	assert.Len(t, r.Layout.Attributes, 1)
}

func TestMemoryDeviceFailuresAndBudget(t *testing.T) {
	boom := errors.New("boom")
	d := NewMemoryDevice(WithBudget(16))

	d.FailNext(KindBuffer, boom)
	_, err := d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: []byte{1}})
	assert.ErrorIs(t, err, boom)

	// The injected failure is consumed.
	_, err = d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: make([]byte, 12)})
	require.NoError(t, err)

	_, err = d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: make([]byte, 8)})
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestMemoryDeviceClose(t *testing.T) {
	d := NewMemoryDevice()
	_, err := d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: []byte{1}})
	require.NoError(t, err)

	d.Close()
	assert.Empty(t, d.Live())
	_, err = d.CreateBuffer(BufferDescriptor{Usage: UsageVertex, Data: []byte{1}})
	assert.ErrorIs(t, err, ErrDeviceClosed)
}
