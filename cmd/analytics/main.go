package main

import (
	"os"

	"github.com/andresuchdata/retail-insights/pkg/logger"
)

func main() {
	if err := newApp(openService).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics failed")
	}
}
