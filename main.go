package main

import (
	"github.com/screenbeam/screenbeam/cmd"
	"github.com/screenbeam/screenbeam/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	cmd.Execute()
}
