package disk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var ErrFileNotFound = errors.New("file not found")

// Image is a filesystem image or block device opened read-only.
type Image struct {
	*os.File
	Path string
}

func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &Image{File: f, Path: path}, nil
}

// Size returns the length of the image. Block devices report a zero size from
// stat, so the size is taken from the end of the stream instead.
func (i *Image) Size() (int64, error) {
	size, err := i.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to determine size of %s: %w", i.Path, err)
	}

	if _, err := i.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind %s: %w", i.Path, err)
	}

	return size, nil
}

// Probe identifies the filesystem in the image and logs what it finds. A
// volume without the ext magic is reported but not rejected.
func (i *Image) Probe() (*Filesystem, error) {
	size, err := i.Size()
	if err != nil {
		return nil, err
	}

	fsys, err := Identify(size, i.File)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", i.Path, err)
	}

	switch {
	case fsys == nil:
		log.Warnf("%s: no known filesystem signature found", i.Path)
	case fsys.Type != FSext:
		log.Warnf("%s: found %s filesystem, not ext2", i.Path, fsys.Type)
	default:
		log.Debugf("%s: ext filesystem %s label %q, %d bytes", i.Path, fsys.Id, fsys.Label, fsys.Size)
	}

	return fsys, nil
}
