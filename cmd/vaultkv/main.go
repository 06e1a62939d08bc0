package main

import (
	"fmt"
	"os"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	a := &app{}
	cmd := newRootCommand(a, buildInfo{
		Version: buildVersion,
		Date:    buildDate,
		Commit:  buildCommit,
	})

	err := cmd.Execute()
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
		err = closeErr
	}
	if err != nil {
		os.Exit(1)
	}
}
