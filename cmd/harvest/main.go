package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/HoekR/emlo-analysis/cmd/harvest/cmd"
	"github.com/HoekR/emlo-analysis/lib/telemetry"
)

func main() {
	debug := os.Getenv("HARVEST_DEBUG") != ""
	telemetry.InitSlog(debug)

	// a missing telemetry.json5 just means spans go nowhere
	ctx := context.Background()
	tel, err := telemetry.SetupFromEnv(ctx, "harvest")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer tel.Shutdown(ctx)
	telemetry.InstrumentPerfStats(ctx)

	cmd.Execute()
}
