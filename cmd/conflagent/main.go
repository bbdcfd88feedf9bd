package main

import (
	"os"

	"github.com/conflagent-dev/conflagent/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
