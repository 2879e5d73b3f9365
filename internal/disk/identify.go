package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kartikeyap/superblock/internal/applog"
)

var log = applog.New("disk")

type FSType string

const (
	FSnone   FSType = ""
	FSext    FSType = "ext"
	FSxfs    FSType = "xfs"
	FSbtrfs  FSType = "btrfs"
	FSsquash FSType = "squashfs"
)

const (
	squashfsMagic uint32 = 0x73717368

	MinSizeSquashfs = 4
	MinSizeExt      = SuperblockOffset + 0x88
	MinSizeBtrfs    = 0x10000 + 1000
	MinSizeXfs      = 512
)

type Filesystem struct {
	Type  FSType
	Id    uuid.UUID
	Label string
	Size  int64 // in bytes
}

// Identify probes the volume for a known filesystem signature. It returns nil
// without an error when nothing matches.
func Identify(size int64, f io.ReaderAt) (*Filesystem, error) {
	if size > MinSizeSquashfs {
		if rv, err := IdentifySquashfs(f); rv != nil || err != nil {
			return rv, err
		}
	}

	if size > MinSizeExt {
		if rv, err := IdentifyExt(f); rv != nil || err != nil {
			return rv, err
		}
	}

	if size > MinSizeBtrfs {
		if rv, err := IdentifyBtrfs(f); rv != nil || err != nil {
			return rv, err
		}
	}

	if size > MinSizeXfs {
		if rv, err := IdentifyXfs(f); rv != nil || err != nil {
			return rv, err
		}
	}

	return nil, nil
}

func IdentifyExt(file io.ReaderAt) (*Filesystem, error) {
	bs := make([]byte, 0x88)
	if _, err := file.ReadAt(bs, SuperblockOffset); err != nil {
		return nil, fmt.Errorf("failed to read superblock: %w", err)
	}

	if binary.LittleEndian.Uint16(bs[0x38:0x3A]) != ExtMagic {
		return nil, nil
	}

	p := Filesystem{
		Type:  FSext,
		Id:    readFilesystemId(bs, 0x68),
		Label: readLabel(bs[0x78:0x88]),
	}

	sBlocksCount := binary.LittleEndian.Uint32(bs[0x4:0x8])
	sLogBlockSize := binary.LittleEndian.Uint32(bs[0x18:0x1C])

	if sLogBlockSize <= 53 {
		//nolint:gosec
		p.Size = int64(sBlocksCount) * int64(uint64(1024)<<sLogBlockSize)
	}

	return &p, nil
}

func IdentifyBtrfs(file io.ReaderAt) (*Filesystem, error) {
	superblock := make([]byte, 1000)

	if _, err := file.ReadAt(superblock, 0x10000); err != nil {
		return nil, fmt.Errorf("failed to read btrfs superblock: %w", err)
	}

	if string(superblock[0x40:0x48]) != "_BHRfS_M" {
		return nil, nil
	}

	p := Filesystem{
		Type:  FSbtrfs,
		Id:    readFilesystemId(superblock, 0x20),
		Label: readLabel(superblock[0x12B:0x22B]),
		//nolint:gosec
		Size: int64(binary.LittleEndian.Uint64(superblock[0x70:0x78])),
	}

	return &p, nil
}

func IdentifyXfs(file io.ReaderAt) (*Filesystem, error) {
	superblock := make([]byte, 512)

	if _, err := file.ReadAt(superblock, 0); err != nil {
		return nil, fmt.Errorf("failed to read xfs superblock: %w", err)
	}

	if string(superblock[0x0:0x4]) != "XFSB" {
		return nil, nil
	}

	p := Filesystem{
		Type:  FSxfs,
		Id:    readFilesystemId(superblock, 0x20),
		Label: readLabel(superblock[0x6C:0x78]),
	}

	// xfs stores its geometry big-endian
	sbBlocksize := binary.BigEndian.Uint32(superblock[0x4:0x8])
	//nolint:gosec
	sbDblocks := int64(binary.BigEndian.Uint64(superblock[0x8:0x10]))

	p.Size = int64(sbBlocksize) * sbDblocks

	return &p, nil
}

func IdentifySquashfs(file io.ReaderAt) (*Filesystem, error) {
	magic := make([]byte, 4)
	if _, err := file.ReadAt(magic, 0); err != nil {
		return nil, fmt.Errorf("failed to read squashfs magic: %w", err)
	} else if binary.LittleEndian.Uint32(magic) == squashfsMagic {
		return &Filesystem{Type: FSsquash}, nil
	}

	return nil, nil
}

func readFilesystemId(bs []byte, offset int) uuid.UUID {
	return DecodeUUID(bs[offset : offset+16])
}

func readLabel(bs []byte) string {
	if end := bytes.IndexByte(bs, 0); end >= 0 {
		return string(bs[:end])
	}

	return string(bs)
}
