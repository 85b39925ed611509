package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/busy/internal/cli"
	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	rootCmd := cli.NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		log.Debug().
			Str("code", string(errors.GetErrorCode(err))).
			Fields(errors.GetErrorDetails(err)).
			Msg("Command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	logging.Close()
	os.Exit(errors.ExitCode(err))
}
