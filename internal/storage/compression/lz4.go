package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// LZ4Compressor implements LZ4 block compression. The uncompressed length is
// prepended as a 4-byte little-endian header so decompression can allocate
// exactly.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	buf := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(data)))

	n, err := lz4.CompressBlock(data, buf[4:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// Incompressible input; store raw with a zero marker.
		binary.LittleEndian.PutUint32(buf[:4], 0)
		return append(buf[:4], data...), nil
	}
	return buf[:4+n], nil
}

// Decompress decompresses LZ4 data produced by Compress.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 blob too short: %d bytes", len(data))
	}
	size := binary.LittleEndian.Uint32(data[:4])
	if size == 0 {
		result := make([]byte, len(data)-4)
		copy(result, data[4:])
		return result, nil
	}

	decompressed := make([]byte, size)
	n, err := lz4.UncompressBlock(data[4:], decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return decompressed[:n], nil
}
