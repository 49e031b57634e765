// Command pnntprss-nntpd serves the groups an installation has
// populated as a read-only NNTP server, grounded on
// _examples/original_source/nntpserver.py and the flag/signal-handling
// style of go-pugleaf's cmd/nntp-server/main.go.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/nntp"
)

func main() {
	addr := flag.String("addr", "", "address to listen on (default :4321)")
	stderr := flag.Bool("stderr", false, "also log to stderr")
	flag.Parse()

	settings := config.NewDefault()
	if *addr != "" {
		settings.NNTPAddr = *addr
	}

	logFile, err := config.SetupLogging(settings, *stderr)
	if err != nil {
		log.Fatalf("pnntprss-nntpd: setup logging: %v", err)
	}
	defer logFile.Close()

	server, err := nntp.NewNNTPServer(settings)
	if err != nil {
		log.Fatalf("pnntprss-nntpd: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("pnntprss-nntpd: start: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("pnntprss-nntpd: shutting down")
	if err := server.Stop(); err != nil {
		log.Printf("pnntprss-nntpd: stop: %v", err)
	}
}
