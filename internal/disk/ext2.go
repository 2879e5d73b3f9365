package disk

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SuperblockOffset is the position of the primary superblock in the volume.
const SuperblockOffset = 1024

// SuperblockSize is the size of the on-disk superblock region.
const SuperblockSize = 1024

const ExtMagic uint16 = 0xEF53

type Kind uint8

const (
	KindUint Kind = iota
	KindHex
	KindTime
	KindUUID
	KindText
	KindLogSize // integer v shown together with the block size 1024<<v
)

var kindNames = []string{"uint", "hex", "time", "uuid", "text", "logsize"}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return ""
	}

	return kindNames[k]
}

// FieldSpec describes one field of the superblock. Offset is relative to the
// start of the superblock.
type FieldSpec struct {
	Name   string
	Offset int
	Width  int
	Kind   Kind
	Label  string
}

// Fields is the ext2 superblock layout in offset order. Entries tile the
// region from 0 to FieldsEnd without gaps.
var Fields = []FieldSpec{
	{"s_inodes_count", 0, 4, KindUint, "total inodes"},
	{"s_blocks_count", 4, 4, KindUint, "blocks count"},
	{"s_r_blocks_count", 8, 4, KindUint, "reserved blocks count"},
	{"s_free_blocks_count", 12, 4, KindUint, "free blocks count"},
	{"s_free_inodes_count", 16, 4, KindUint, "free inodes count"},
	{"s_first_data_block", 20, 4, KindUint, "first data block"},
	{"s_log_block_size", 24, 4, KindLogSize, "log block size"},
	{"s_log_frag_size", 28, 4, KindUint, "fragment size"},
	{"s_blocks_per_group", 32, 4, KindUint, "blocks per group"},
	{"s_frags_per_group", 36, 4, KindUint, "frags per group"},
	{"s_inodes_per_group", 40, 4, KindUint, "inodes per group"},
	{"s_mtime", 44, 4, KindTime, "last mount time"},
	{"s_wtime", 48, 4, KindTime, "last write time"},
	{"s_mnt_count", 52, 2, KindUint, "mount count"},
	{"s_max_mnt_count", 54, 2, KindUint, "max mount count"},
	{"s_magic", 56, 2, KindHex, "magic signature"},
	{"s_state", 58, 2, KindUint, "state"},
	{"s_errors", 60, 2, KindUint, "error behavior"},
	{"s_minor_rev_level", 62, 2, KindUint, "minor revision"},
	{"s_lastcheck", 64, 4, KindTime, "last check time"},
	{"s_checkinterval", 68, 4, KindUint, "check interval"},
	{"s_creator_os", 72, 4, KindUint, "creator OS"},
	{"s_rev_level", 76, 4, KindUint, "revision level"},
	{"s_def_resuid", 80, 2, KindUint, "default uid"},
	{"s_def_resgid", 82, 2, KindUint, "default gid"},
	{"s_first_ino", 84, 4, KindUint, "first non-reserved inode"},
	{"s_inode_size", 88, 2, KindUint, "inode size"},
	{"s_block_group_nr", 90, 2, KindUint, "block group number"},
	{"s_feature_compat", 92, 4, KindHex, "compatible features"},
	{"s_feature_incompat", 96, 4, KindHex, "incompatible features"},
	{"s_feature_ro_compat", 100, 4, KindHex, "read-only features"},
	{"s_uuid", 104, 16, KindUUID, "filesystem UUID"},
	{"s_volume_name", 120, 16, KindText, "volume name"},
	{"s_last_mounted", 136, 64, KindText, "last mount path"},
	{"s_algorithm_usage_bitmap", 200, 8, KindHex, "compression bitmap"},
	{"s_prealloc_blocks", 208, 1, KindUint, "preallocate blocks"},
	{"s_prealloc_dir_blocks", 209, 1, KindUint, "preallocate dir blocks"},
}

// FieldsEnd is the first offset past the decoded fields.
const FieldsEnd = 210

type DecodedField struct {
	Spec  FieldSpec
	Raw   []byte
	Value any // uint64, time.Time, uuid.UUID or string
	Text  string
}

func (f DecodedField) String() string {
	return f.Spec.Label + ": " + f.Text
}

type Decoder struct {
	Location *time.Location
}

func (d Decoder) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}

	return d.Location
}

// DecodeField interprets bs, which must be spec.Width bytes long.
func (d Decoder) DecodeField(spec FieldSpec, bs []byte) DecodedField {
	f := DecodedField{Spec: spec, Raw: bs}

	switch spec.Kind {
	case KindUint:
		v := DecodeUint(bs)
		f.Value, f.Text = v, strconv.FormatUint(v, 10)
	case KindHex:
		v := DecodeUint(bs)
		f.Value, f.Text = v, FormatHex(v)
	case KindLogSize:
		v := DecodeUint(bs)
		f.Value, f.Text = v, formatLogSize(v)
	case KindTime:
		t := DecodeTime(bs, d.location())
		f.Value, f.Text = t, FormatTime(t)
	case KindUUID:
		id := DecodeUUID(bs)
		f.Value, f.Text = id, id.String()
	case KindText:
		s := DecodeText(bs)
		f.Value, f.Text = s, s
	}

	return f
}

// Decode walks Fields in order, reading each one from r and passing it to
// emit. The walk stops at the first read or emit error.
func (d Decoder) Decode(r *Reader, emit func(DecodedField) error) error {
	for _, spec := range Fields {
		bs, err := r.Next(spec.Width)
		if err != nil {
			return fmt.Errorf("failed to read %s (superblock offset %d): %w", spec.Label, spec.Offset, err)
		}

		log.Debugf("decoded %s at offset %d", spec.Name, r.Offset()-int64(spec.Width))

		if err := emit(d.DecodeField(spec, bs)); err != nil {
			return err
		}
	}

	return nil
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type AnalyzeOptions struct {
	Format   Format
	Location *time.Location
}

type reportField struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label" yaml:"label"`
	Offset int    `json:"offset" yaml:"offset"`
	Width  int    `json:"width" yaml:"width"`
	Kind   string `json:"kind" yaml:"kind"`
	Value  string `json:"value" yaml:"value"`
	Raw    string `json:"raw" yaml:"raw"`
}

// Analyze decodes the superblock of the volume in r and writes the report to
// w. Text lines are written as each field is decoded; structured formats are
// written only once every field decoded.
func Analyze(r io.ReadSeeker, w io.Writer, opts AnalyzeOptions) error {
	reader, err := NewReader(r, SuperblockOffset)
	if err != nil {
		return err
	}

	dec := Decoder{Location: opts.Location}

	switch opts.Format {
	case FormatText, "":
		return dec.Decode(reader, func(f DecodedField) error {
			_, err := fmt.Fprintln(w, f.String())

			return err
		})
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}

	fields := make([]reportField, 0, len(Fields))

	err = dec.Decode(reader, func(f DecodedField) error {
		fields = append(fields, reportField{
			Name:   f.Spec.Name,
			Label:  f.Spec.Label,
			Offset: f.Spec.Offset,
			Width:  f.Spec.Width,
			Kind:   f.Spec.Kind.String(),
			Value:  f.Text,
			Raw:    hex.EncodeToString(f.Raw),
		})

		return nil
	})
	if err != nil {
		return err
	}

	if opts.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(fields)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(fields); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return enc.Close()
}
