package main

import (
	"os"

	"github.com/conneroisu/redactor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
