package main

import (
	"fmt"
	"os"
	"path"

	"github.com/aurora-is-near/tarcodec/cmd/tarcodec/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	os.Exit(0)
}
