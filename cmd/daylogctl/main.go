// Program daylogctl performs maintenance on a daylog log directory.
package main

import (
	"os"

	obs "daylog/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		obs.Logger.Error().Err(err).Msg("daylogctl")
		os.Exit(1)
	}
}
