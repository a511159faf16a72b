// Package compression provides the pluggable compressors used when writing
// ledger records to the key-value store.
package compression

// Compressor compresses and decompresses record blobs.
type Compressor interface {
	// Name returns the name of the compressor.
	Name() string

	// Compress compresses the data.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses the data.
	Decompress(data []byte) ([]byte, error)
}

// NewCompressor returns the compressor for the given name, defaulting to
// no compression for unknown names.
func NewCompressor(name string) Compressor {
	switch name {
	case "lz4":
		return &LZ4Compressor{}
	default:
		return &NoCompressor{}
	}
}

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns the data unchanged.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Decompress returns the data unchanged.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}
