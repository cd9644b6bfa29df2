package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}
