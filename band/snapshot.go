package band

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/voxkit/levelset/core"
)

// Compression selects the snapshot block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the snapshot payload uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// Snapshot format:
//
//	[Magic: 4 bytes "LSB1"] [Compression: 1 byte]
//	[UncompressedSize: uint32] [CompressedSize: uint32] [Block...]
//
// CompressedSize == 0 means the block is stored uncompressed. The block holds
// [Count: uint64] followed by Count records of
// [CellID: uint32] [Status: 1 byte] [Value: float64], little-endian.
var snapshotMagic = [4]byte{'L', 'S', 'B', '1'}

const blockHeaderSize = 8

// maxBlockSize caps a snapshot block so a crafted header cannot demand an
// arbitrary allocation.
const maxBlockSize = 1 << 30

// lz4MaxRatio is the maximum expansion of a legal LZ4 block.
const lz4MaxRatio = 255

var (
	// ErrBadSnapshot is returned when a snapshot is truncated or malformed.
	ErrBadSnapshot = errors.New("band: malformed snapshot")
)

const recordSize = 4 + 1 + 8

// Save writes a snapshot of the store to w.
func (s *Store) Save(w io.Writer, c Compression) error {
	payload := make([]byte, 8, 8+s.Len()*recordSize)
	binary.LittleEndian.PutUint64(payload, uint64(s.Len()))

	var rec [recordSize]byte
	for id, info := range s.Records() {
		binary.LittleEndian.PutUint32(rec[0:], uint32(id))
		rec[4] = byte(info.Status)
		binary.LittleEndian.PutUint64(rec[5:], math.Float64bits(info.Value))
		payload = append(payload, rec[:]...)
	}

	block, err := compressBlock(payload, c)
	if err != nil {
		return err
	}

	header := make([]byte, 5)
	copy(header, snapshotMagic[:])
	header[4] = byte(c)
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// Load replaces the store contents with a snapshot previously written by Save.
func (s *Store) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(data) < 5 || !bytes.Equal(data[:4], snapshotMagic[:]) {
		return ErrBadSnapshot
	}
	c := Compression(data[4])
	if c > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %d", ErrBadSnapshot, c)
	}

	payload, err := decompressBlock(data[5:], c)
	if err != nil {
		return err
	}
	if len(payload) < 8 {
		return ErrBadSnapshot
	}
	count := binary.LittleEndian.Uint64(payload)
	payload = payload[8:]
	if count > uint64(len(payload))/recordSize {
		return ErrBadSnapshot
	}

	s.Clear()
	s.Reserve(int(count))
	for i := uint64(0); i < count; i++ {
		rec := payload[i*recordSize:]
		id := core.CellID(binary.LittleEndian.Uint32(rec[0:]))
		status := Status(rec[4])
		if status > StatusPending {
			return fmt.Errorf("%w: unknown status %d", ErrBadSnapshot, status)
		}
		value := math.Float64frombits(binary.LittleEndian.Uint64(rec[5:]))
		s.Insert(id, Info{Value: value, Status: status})
	}
	return nil
}

// compressBlock prefixes data with a block header, compressing it when the
// algorithm helps. Incompressible blocks fall back to stored form.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("band: unknown compression %d", c)
	}

	if len(compressed) == 0 || len(compressed) >= len(data) {
		block := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(block[4:], 0) // 0 = stored
		copy(block[blockHeaderSize:], data)
		return block, nil
	}

	block := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], uint32(len(compressed)))
	copy(block[blockHeaderSize:], compressed)
	return block, nil
}

func decompressBlock(block []byte, c Compression) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, ErrBadSnapshot
	}
	// Size fields come off the wire; all arithmetic runs in int64 so hostile
	// values near the uint32 ceiling cannot wrap the bounds checks.
	uncompressedSize := int64(binary.LittleEndian.Uint32(block[0:]))
	compressedSize := int64(binary.LittleEndian.Uint32(block[4:]))
	rest := int64(len(block) - blockHeaderSize)

	if uncompressedSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block size %d", ErrBadSnapshot, uncompressedSize)
	}

	if compressedSize == 0 {
		if uncompressedSize > rest {
			return nil, ErrBadSnapshot
		}
		return block[blockHeaderSize : blockHeaderSize+int(uncompressedSize)], nil
	}

	if compressedSize > rest {
		return nil, ErrBadSnapshot
	}
	data := block[blockHeaderSize : blockHeaderSize+int(compressedSize)]

	switch c {
	case CompressionLZ4:
		if uncompressedSize > compressedSize*lz4MaxRatio {
			return nil, ErrBadSnapshot
		}
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if int64(n) != uncompressedSize {
			return nil, ErrBadSnapshot
		}
		return out, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlockSize))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		decoded, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		if int64(len(decoded)) != uncompressedSize {
			return nil, ErrBadSnapshot
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: compressed block with compression %d", ErrBadSnapshot, c)
	}
}
