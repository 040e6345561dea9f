package main

import (
	"os"

	"github.com/isnadmansour/IsnadTasks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
