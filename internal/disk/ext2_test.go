package disk

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testUUID = []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

func putField(sb []byte, off int, width int, v uint64) {
	copy(sb[off:off+width], encodeUint(v, width))
}

// testImage returns a 2048-byte image: 1024 zero bytes followed by a crafted
// superblock region.
func testImage() []byte {
	img := make([]byte, SuperblockOffset+SuperblockSize)
	sb := img[SuperblockOffset:]

	putField(sb, 0, 4, 100)
	putField(sb, 4, 4, 400)
	putField(sb, 8, 4, 20)
	putField(sb, 12, 4, 300)
	putField(sb, 16, 4, 89)
	putField(sb, 20, 4, 1)
	putField(sb, 24, 4, 2)
	putField(sb, 28, 4, 2)
	putField(sb, 32, 4, 8192)
	putField(sb, 36, 4, 8192)
	putField(sb, 40, 4, 100)
	putField(sb, 44, 4, 1700000000)
	putField(sb, 52, 2, 3)
	putField(sb, 54, 2, 0xFFFF)
	putField(sb, 56, 2, uint64(ExtMagic))
	putField(sb, 58, 2, 1)
	putField(sb, 60, 2, 1)
	putField(sb, 76, 4, 1)
	putField(sb, 84, 4, 11)
	putField(sb, 88, 2, 128)
	putField(sb, 92, 4, 0x38)
	putField(sb, 96, 4, 0x2)
	putField(sb, 100, 4, 0x1)
	copy(sb[104:120], testUUID)
	copy(sb[120:136], "rootfs")
	copy(sb[136:200], "/mnt")
	sb[208] = 7
	sb[209] = 9

	return img
}

var testReport = []string{
	"total inodes: 100",
	"blocks count: 400",
	"reserved blocks count: 20",
	"free blocks count: 300",
	"free inodes count: 89",
	"first data block: 1",
	"log block size: 2 (4096 bytes)",
	"fragment size: 2",
	"blocks per group: 8192",
	"frags per group: 8192",
	"inodes per group: 100",
	"last mount time: 2023-11-14 22:13:20",
	"last write time: 1970-01-01 00:00:00",
	"mount count: 3",
	"max mount count: 65535",
	"magic signature: 0xEF53",
	"state: 1",
	"error behavior: 1",
	"minor revision: 0",
	"last check time: 1970-01-01 00:00:00",
	"check interval: 0",
	"creator OS: 0",
	"revision level: 1",
	"default uid: 0",
	"default gid: 0",
	"first non-reserved inode: 11",
	"inode size: 128",
	"block group number: 0",
	"compatible features: 0x38",
	"incompatible features: 0x2",
	"read-only features: 0x1",
	"filesystem UUID: 00112233-4455-6677-8899-aabbccddeeff",
	"volume name: rootfs" + strings.Repeat(".", 10),
	"last mount path: /mnt" + strings.Repeat(".", 60),
	"compression bitmap: 0x0",
	"preallocate blocks: 7",
	"preallocate dir blocks: 9",
}

func TestFieldsTileLayout(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Fields)
	assert.Equal(t, 0, Fields[0].Offset)

	names := map[string]struct{}{}

	for i, f := range Fields {
		assert.Contains(t, []int{1, 2, 4, 8, 16, 64}, f.Width, f.Name)
		assert.NotEmpty(t, f.Label, f.Name)

		if i+1 < len(Fields) {
			assert.Equal(t, Fields[i+1].Offset, f.Offset+f.Width, "gap or overlap after %s", f.Name)
		}

		_, dup := names[f.Name]
		assert.False(t, dup, "duplicate field %s", f.Name)
		names[f.Name] = struct{}{}
	}

	last := Fields[len(Fields)-1]
	assert.Equal(t, FieldsEnd, last.Offset+last.Width)
}

func TestFieldKindWidths(t *testing.T) {
	t.Parallel()

	for _, f := range Fields {
		switch f.Kind {
		case KindTime:
			assert.Equal(t, 4, f.Width, f.Name)
		case KindUUID:
			assert.Equal(t, 16, f.Width, f.Name)
		case KindUint, KindHex, KindLogSize:
			assert.Contains(t, []int{1, 2, 4, 8}, f.Width, f.Name)
		}
	}
}

func TestAnalyzeText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(testImage()), &out, AnalyzeOptions{Location: time.UTC})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, "total inodes: 100", lines[0])
	assert.Equal(t, testReport, lines)
	assert.Len(t, lines, len(Fields))
}

func TestAnalyzeZeroImage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(make([]byte, 2048)), &out, AnalyzeOptions{Location: time.UTC})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "last mount time: 1970-01-01 00:00:00\n")
	assert.Contains(t, out.String(), "filesystem UUID: 00000000-0000-0000-0000-000000000000\n")
	assert.Contains(t, out.String(), "magic signature: 0x0\n")
}

func TestAnalyzeTruncated(t *testing.T) {
	t.Parallel()

	// the region ends two bytes into the magic signature field
	img := testImage()[:SuperblockOffset+57]

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(img), &out, AnalyzeOptions{Location: time.UTC})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Contains(t, err.Error(), "magic signature")

	var terr *TruncatedError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, int64(SuperblockOffset+56), terr.Offset)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, testReport[:15], lines)
}

func TestAnalyzeShortOfRegion(t *testing.T) {
	t.Parallel()

	// fields end at 210; the rest of the region is not read by analyze
	img := testImage()[:SuperblockOffset+FieldsEnd]

	var out bytes.Buffer

	require.NoError(t, Analyze(bytes.NewReader(img), &out, AnalyzeOptions{Location: time.UTC}))
}

func TestAnalyzeEmptyStream(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(make([]byte, 100)), &out, AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Empty(t, out.String())
}

func TestAnalyzeJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(testImage()), &out, AnalyzeOptions{Format: FormatJSON, Location: time.UTC})
	require.NoError(t, err)

	var fields []reportField
	require.NoError(t, json.Unmarshal(out.Bytes(), &fields))
	require.Len(t, fields, len(Fields))

	assert.Equal(t, reportField{
		Name:   "s_inodes_count",
		Label:  "total inodes",
		Offset: 0,
		Width:  4,
		Kind:   "uint",
		Value:  "100",
		Raw:    "64000000",
	}, fields[0])

	assert.Equal(t, "s_magic", fields[15].Name)
	assert.Equal(t, "0xEF53", fields[15].Value)
	assert.Equal(t, "53ef", fields[15].Raw)
}

func TestAnalyzeYAML(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(testImage()), &out, AnalyzeOptions{Format: FormatYAML, Location: time.UTC})
	require.NoError(t, err)

	var fields []reportField
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &fields))
	require.Len(t, fields, len(Fields))
	assert.Equal(t, "00112233-4455-6677-8899-aabbccddeeff", fields[31].Value)
	assert.Equal(t, "uuid", fields[31].Kind)
}

func TestAnalyzeStructuredTruncated(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Analyze(bytes.NewReader(testImage()[:SuperblockOffset+100]), &out, AnalyzeOptions{Format: FormatJSON})
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Empty(t, out.String())
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Analyze(bytes.NewReader(testImage()), &bytes.Buffer{}, AnalyzeOptions{Format: "xml"})
	assert.ErrorContains(t, err, "xml")
}

func TestDecodeFieldValues(t *testing.T) {
	t.Parallel()

	dec := Decoder{Location: time.UTC}
	got := map[string]DecodedField{}

	r, err := NewReader(bytes.NewReader(testImage()), SuperblockOffset)
	require.NoError(t, err)

	require.NoError(t, dec.Decode(r, func(f DecodedField) error {
		got[f.Spec.Name] = f

		return nil
	}))

	assert.Equal(t, uint64(100), got["s_inodes_count"].Value)
	assert.Equal(t, uint64(ExtMagic), got["s_magic"].Value)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got["s_mtime"].Value)
	assert.Equal(t, DecodeUUID(testUUID), got["s_uuid"].Value)
	assert.Equal(t, int64(SuperblockOffset+FieldsEnd), r.Offset())
	assert.Equal(t, binary.LittleEndian.Uint16(got["s_magic"].Raw), ExtMagic)
}

func TestDecodeStopsOnEmitError(t *testing.T) {
	t.Parallel()

	r, err := NewReader(bytes.NewReader(testImage()), SuperblockOffset)
	require.NoError(t, err)

	count := 0
	stop := assert.AnError

	err = Decoder{}.Decode(r, func(DecodedField) error {
		count++
		if count == 3 {
			return stop
		}

		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, count)
	assert.Equal(t, int64(SuperblockOffset+12), r.Offset())
}
