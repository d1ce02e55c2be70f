package asset

import "github.com/Carmen-Shannon/oxy-scene/engine/gpu"

// TypedBuffer owns the raw bytes of one document buffer. It is immutable after resolution.
type TypedBuffer struct {
	Name  string
	Bytes []byte
}

// BufferRegion is a byte range of a TypedBuffer, optionally strided.
// The range always lies within the buffer: ByteOffset+ByteLength <= len(Buffer.Bytes).
type BufferRegion struct {
	// Index is the region's position in the source document.
	Index int

	Name string

	// Buffer is the backing buffer. The graph owns it.
	Buffer *TypedBuffer

	ByteOffset int
	ByteLength int

	// ByteStride is the distance between elements, 0 for tightly packed.
	ByteStride int

	// usage is the device role the region was last uploaded for.
	usage gpu.BufferUsage

	// handle is the device buffer, owned by the Materializer.
	handle gpu.Handle
}

// Bytes returns the region's slice of the backing buffer. The slice aliases the buffer.
func (r *BufferRegion) Bytes() []byte {
	return r.Buffer.Bytes[r.ByteOffset : r.ByteOffset+r.ByteLength]
}

// Handle returns the device buffer handle, or the zero handle if not uploaded.
func (r *BufferRegion) Handle() gpu.Handle {
	return r.handle
}

// IsLoaded reports whether the region currently has a device buffer.
func (r *BufferRegion) IsLoaded() bool {
	return r.handle.Valid()
}
