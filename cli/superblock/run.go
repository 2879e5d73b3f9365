package superblock

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kartikeyap/superblock/internal/logerr"
)

// Run executes the command line in args (without the program name) and
// returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &Cli{Err: stderr}

	cmd := NewRootCommand(cli)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// cobra falls back to os.Args for a nil slice
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if cli.Debug {
		err = logerr.Fatal(err)
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	if errors.Is(err, ErrInvalidArgument) {
		fmt.Fprintln(stderr, Usage)
	}

	return 1
}
