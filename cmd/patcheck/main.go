package main

import (
	stderrors "errors"
	"os"

	"patcheck/internal/logging"
)

// errFailedCheck marks a completed check whose verdict is a fail. It
// maps to exit code 1; every other error exits 2.
var errFailedCheck = stderrors.New("pattern check failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if stderrors.Is(err, errFailedCheck) {
			os.Exit(1)
		}
		logger := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.InfoLevel,
		})
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(2)
	}
}
