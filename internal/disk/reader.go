package disk

import (
	"errors"
	"fmt"
	"io"
)

var ErrTruncatedInput = errors.New("truncated input")

// TruncatedError reports a read that ran past the end of the backing stream.
type TruncatedError struct {
	Offset    int64 // absolute offset of the failed read
	Want      int
	Available int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input at offset %d: wanted %d bytes, %d available", e.Offset, e.Want, e.Available)
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncatedInput
}

// Reader consumes a stream sequentially from a fixed starting offset. The
// cursor only moves forward.
type Reader struct {
	r      io.Reader
	offset int64
}

func NewReader(r io.ReadSeeker, offset int64) (*Reader, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}

	return &Reader{r: r, offset: offset}, nil
}

// Next returns the next n bytes and advances the cursor by n.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid read width %d at offset %d", n, r.offset)
	}

	bs := make([]byte, n)

	read, err := io.ReadFull(r.r, bs)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, &TruncatedError{Offset: r.offset, Want: n, Available: read}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d: %w", n, r.offset, err)
	}

	r.offset += int64(n)

	return bs, nil
}

func (r *Reader) Offset() int64 {
	return r.offset
}
