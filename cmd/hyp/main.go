// hyp is the HyperPod command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/cli"
)

func main() {
	root, err := cli.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
