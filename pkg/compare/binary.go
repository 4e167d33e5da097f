package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/dirmirror/pkg/storage"
)

// BinaryComparator compares files byte-by-byte.
// Modification times are never consulted, only sizes and content.
type BinaryComparator struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare compares two files byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, source, dest storage.Backend, path string) (*Comparison, error) {
	sourceInfo, err := source.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	destInfo, err := dest.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination: %w", err)
	}

	// Quick check: if sizes differ, files are different
	if sourceInfo.Size != destInfo.Size {
		return &Comparison{
			Path:   path,
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: source=%d, dest=%d", sourceInfo.Size, destInfo.Size),
		}, nil
	}

	sourceReader, err := source.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceReader.Close()

	destReader, err := dest.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination file: %w", err)
	}
	defer destReader.Close()

	sourceBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(sourceBufPtr)
	sourceBuf := *sourceBufPtr

	destBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(destBufPtr)
	destBuf := *destBufPtr

	var bytesCompared int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// ReadFull so short reads on one side don't look like a difference
		sourceN, sourceErr := io.ReadFull(sourceReader, sourceBuf)
		destN, destErr := io.ReadFull(destReader, destBuf)

		sourceDone := isEOF(sourceErr)
		destDone := isEOF(destErr)

		if sourceErr != nil && !sourceDone {
			return nil, fmt.Errorf("failed to read source: %w", sourceErr)
		}
		if destErr != nil && !destDone {
			return nil, fmt.Errorf("failed to read destination: %w", destErr)
		}

		n := sourceN
		if destN < n {
			n = destN
		}
		if !bytes.Equal(sourceBuf[:n], destBuf[:n]) {
			offset := bytesCompared
			for i := 0; i < n; i++ {
				if sourceBuf[i] != destBuf[i] {
					offset += int64(i)
					break
				}
			}
			return &Comparison{
				Path:   path,
				Result: Different,
				Reason: fmt.Sprintf("binary content differs at byte offset %d", offset),
			}, nil
		}

		// The files changed size while being read
		if sourceN != destN {
			return &Comparison{
				Path:   path,
				Result: Different,
				Reason: fmt.Sprintf("length differs after byte offset %d", bytesCompared+int64(n)),
			}, nil
		}

		bytesCompared += int64(sourceN)

		if sourceDone && destDone {
			break
		}
	}

	return &Comparison{
		Path:   path,
		Result: Same,
		Reason: fmt.Sprintf("binary content matches (%d bytes)", bytesCompared),
	}, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
