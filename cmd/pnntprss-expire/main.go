// Command pnntprss-expire walks every group, removing articles that
// have exceeded their lifetime, grounded on
// _examples/original_source/expire.py.
package main

import (
	"log"
	"time"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/poller"
	"github.com/go-while/pnntprss/internal/store"
)

func main() {
	settings := config.NewDefault()

	logFile, err := config.SetupLogging(settings, false)
	if err != nil {
		log.Fatalf("pnntprss-expire: setup logging: %v", err)
	}
	defer logFile.Close()

	names, err := store.ListGroups(settings)
	if err != nil {
		log.Fatalf("pnntprss-expire: %v", err)
	}

	now := time.Now()
	for _, name := range names {
		g, err := store.Load(settings, name)
		if err != nil {
			log.Printf("pnntprss-expire: %s: %v", name, err)
			continue
		}
		n, err := poller.Expire(g, settings.ArticleLifetime, now)
		if err != nil {
			log.Printf("pnntprss-expire: %s: %v", name, err)
			continue
		}
		if n > 0 {
			log.Printf("pnntprss-expire: expired %d article(s) in %s", n, name)
		}
	}
}
