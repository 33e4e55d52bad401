package main

import (
	"fmt"
	"os"

	"github.com/temirov/brancho/cmd/cli"
)

const exitErrorTemplateConstant = "%v\n"

func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
