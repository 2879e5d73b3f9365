package superblock

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kartikeyap/superblock/internal/disk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// outputFormat is a pflag.Value restricted to the report formats.
type outputFormat disk.Format

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(s string) error {
	switch v := disk.Format(strings.ToLower(s)); v {
	case disk.FormatText, disk.FormatJSON, disk.FormatYAML:
		*f = outputFormat(v)

		return nil
	default:
		return fmt.Errorf("must be one of %s, %s, %s", disk.FormatText, disk.FormatJSON, disk.FormatYAML)
	}
}

func (f *outputFormat) Type() string {
	return "format"
}

func NewAnalyzeCommand(cli *Cli) *cobra.Command {
	format := outputFormat(disk.FormatText)

	var utc bool

	cmd := &cobra.Command{
		Use:   "analyze <filename>",
		Short: "Decode the superblock fields",
		Args:  requireFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.setup(); err != nil {
				return err
			}

			loc, err := cli.location(utc)
			if err != nil {
				return err
			}

			return analyzeImage(cmd.OutOrStdout(), args[0], disk.AnalyzeOptions{Format: disk.Format(format), Location: loc})
		},
	}

	cmd.Flags().VarP(&format, "output", "o", "report format: text, json or yaml")
	cmd.Flags().BoolVar(&utc, "utc", false, "show times in UTC instead of the configured time zone")

	return cmd
}

func analyzeImage(out io.Writer, path string, opts disk.AnalyzeOptions) error {
	img, err := disk.OpenImage(path)
	if err != nil {
		return err
	}
	defer img.Close()

	if _, err := img.Probe(); err != nil {
		log.Warnf("%v", err)
	}

	if opts.Format == disk.FormatText {
		fmt.Fprintf(out, "\nAnalyzing superblock (bytes %d-%d) of file %s (times in %s).\n\n",
			disk.SuperblockOffset, disk.SuperblockOffset+disk.SuperblockSize-1, path, zoneName(opts.Location))
	}

	return disk.Analyze(img, out, opts)
}

func zoneName(loc *time.Location) string {
	if loc == time.Local {
		name, _ := time.Now().Zone()

		return "local time, " + name
	}

	return loc.String()
}
