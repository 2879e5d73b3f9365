package main

import (
	"context"
	"os"

	"github.com/kartikeyap/superblock/cli/superblock"
)

func main() {
	os.Exit(superblock.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
