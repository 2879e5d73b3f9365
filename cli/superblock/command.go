package superblock

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kartikeyap/superblock/internal/applog"
	"github.com/kartikeyap/superblock/internal/config"
	"github.com/spf13/cobra"
)

var log = applog.New("superblock-cli")

var ErrInvalidArgument = errors.New("invalid argument")

const Usage = "Usage: superblock [dump|analyze] <filename>"

type Cli struct {
	ConfigPath string
	Debug      bool
	Config     *config.Config
	Err        io.Writer
}

func (c *Cli) setup() error {
	conf := config.Default()

	if c.ConfigPath != "" {
		var err error
		if conf, err = config.Load(c.ConfigPath); err != nil {
			return err
		}
	}

	level, err := conf.Level()
	if err != nil {
		return err
	}

	if c.Debug {
		level = applog.LogLevelDebug
	}

	out := c.Err
	if out == nil {
		out = os.Stderr
	}

	applog.SetLogHandler(&applog.DefaultLogHandler{Level: level, Out: out})

	c.Config = conf

	if c.ConfigPath != "" {
		log.Infof("loaded configuration from %s", c.ConfigPath)
	}

	return nil
}

func (c *Cli) location(utc bool) (*time.Location, error) {
	if utc {
		return time.UTC, nil
	}

	return c.Config.Location()
}

func NewRootCommand(cli *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "superblock COMMAND <filename>",
		Short:         "Dump or analyze the superblock of an ext2 filesystem image",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: missing command", ErrInvalidArgument)
			}

			return fmt.Errorf("%w: unknown command %q for %q", ErrInvalidArgument, args[0], cmd.CommandPath())
		},
		DisableFlagsInUseLine: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	})

	cmd.PersistentFlags().StringVarP(&cli.ConfigPath, "config", "c", "", "configuration file (JSON with comments)")
	cmd.PersistentFlags().BoolVar(&cli.Debug, "debug", false, "enable debug logging")

	cmd.AddCommand(NewDumpCommand(cli))
	cmd.AddCommand(NewAnalyzeCommand(cli))

	return cmd
}

func requireFile(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s requires a filename", ErrInvalidArgument, cmd.CommandPath())
	default:
		return fmt.Errorf("%w: %s accepts one filename, got %d arguments", ErrInvalidArgument, cmd.CommandPath(), len(args))
	}
}
