package disk

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const TimeFormat = "2006-01-02 15:04:05"

// DecodeUint reads a little-endian unsigned integer of 1, 2, 4 or 8 bytes.
func DecodeUint(bs []byte) uint64 {
	switch len(bs) {
	case 1:
		return uint64(bs[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(bs))
	case 4:
		return uint64(binary.LittleEndian.Uint32(bs))
	default:
		return binary.LittleEndian.Uint64(bs)
	}
}

func FormatHex(v uint64) string {
	return "0x" + strings.ToUpper(strconv.FormatUint(v, 16))
}

// DecodeTime interprets a 4-byte field as seconds since the epoch.
func DecodeTime(bs []byte, loc *time.Location) time.Time {
	//nolint:gosec
	return time.Unix(int64(DecodeUint(bs)), 0).In(loc)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

func DecodeUUID(bs []byte) uuid.UUID {
	var id uuid.UUID
	copy(id[:], bs)

	return id
}

// DecodeText maps each byte to itself when it is printable ASCII and to '.'
// otherwise. Whitespace other than the space character counts as
// non-printable.
func DecodeText(bs []byte) string {
	out := make([]byte, len(bs))

	for i, b := range bs {
		if b < 0x20 || b > 0x7E {
			out[i] = '.'
		} else {
			out[i] = b
		}
	}

	return string(out)
}

func formatLogSize(v uint64) string {
	if v > 53 {
		return strconv.FormatUint(v, 10)
	}

	return strconv.FormatUint(v, 10) + " (" + strconv.FormatUint(1024<<v, 10) + " bytes)"
}
