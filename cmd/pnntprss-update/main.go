// Command pnntprss-update polls feeds. With no arguments it polls
// every group that is due a check; given group names, it polls those
// groups unconditionally. Grounded on
// _examples/original_source/update.py, intended to be run frequently
// from a cron job.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/scheduler"
)

func main() {
	flag.Parse()
	names := flag.Args()

	settings := config.NewDefault()

	logFile, err := config.SetupLogging(settings, false)
	if err != nil {
		log.Fatalf("pnntprss-update: setup logging: %v", err)
	}
	defer logFile.Close()

	s := scheduler.New(settings)
	ctx := context.Background()

	if len(names) == 0 {
		if err := s.Run(ctx); err != nil {
			log.Fatalf("pnntprss-update: %v", err)
		}
		return
	}

	if err := s.RunNames(ctx, names); err != nil {
		log.Fatalf("pnntprss-update: %v", err)
	}
}
