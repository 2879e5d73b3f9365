package disk

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	// DumpLines is the default number of rows, covering the first 512 bytes.
	DumpLines = 32
	// DumpLinesAll covers the whole superblock region.
	DumpLinesAll = SuperblockSize / dumpRowSize

	dumpRowSize  = 16
	dumpWordSize = 4
)

// DumpHeader writes the column titles centred over the hex and ASCII columns.
func DumpHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat(" ", 5), center("HEX", 35), center("ASCII", dumpRowSize))

	return err
}

// Dump writes lines rows of 16 bytes each, starting at the superblock.
func Dump(r io.ReadSeeker, w io.Writer, lines int) error {
	if lines < 1 || lines > DumpLinesAll {
		return fmt.Errorf("dump row count %d out of range 1-%d", lines, DumpLinesAll)
	}

	reader, err := NewReader(r, SuperblockOffset)
	if err != nil {
		return err
	}

	words := make([]string, dumpRowSize/dumpWordSize)
	row := make([]byte, 0, dumpRowSize)

	for i := 0; i < lines; i++ {
		row = row[:0]

		for j := range words {
			bs, err := reader.Next(dumpWordSize)
			if err != nil {
				return fmt.Errorf("failed to read dump row %d: %w", i+1, err)
			}

			words[j] = hex.EncodeToString(bs)
			row = append(row, bs...)
		}

		if _, err := fmt.Fprintf(w, "%2d:  %s  %s\n", i+1, strings.Join(words, " "), DecodeText(row)); err != nil {
			return err
		}
	}

	return nil
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}

	left := pad / 2

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
