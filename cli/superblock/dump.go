package superblock

import (
	"fmt"
	"io"

	"github.com/kartikeyap/superblock/internal/disk"
	"github.com/spf13/cobra"
)

func NewDumpCommand(cli *Cli) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "dump <filename>",
		Short: "Print the superblock as hex and ASCII",
		Args:  requireFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.setup(); err != nil {
				return err
			}

			lines := cli.Config.DumpLines
			if all {
				lines = disk.DumpLinesAll
			}

			return dumpImage(cmd.OutOrStdout(), args[0], lines)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "dump the whole 1024-byte superblock")

	return cmd
}

func dumpImage(out io.Writer, path string, lines int) error {
	img, err := disk.OpenImage(path)
	if err != nil {
		return err
	}
	defer img.Close()

	end := disk.SuperblockOffset + lines*16 - 1

	fmt.Fprintf(out, "\nPrinting superblock (bytes %d-%d) of file %s.\n\n", disk.SuperblockOffset, end, path)

	if err := disk.DumpHeader(out); err != nil {
		return err
	}

	return disk.Dump(img, out, lines)
}
