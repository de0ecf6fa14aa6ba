// SPDX-License-Identifier: MIT

// Command anhbench runs the anharmonic kernels on a synthetic ensemble and
// reports timings, output norms and the collected metrics.
//
//	anhbench run --modes 24 --configs 2000 --strategy shared --workers 8
//	anhbench run --strategy distributed --ranks 4 --temperature 300
//	SSCHA_STRATEGY=shared anhbench run --config bench.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
