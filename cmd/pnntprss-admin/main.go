// Command pnntprss-admin creates, deletes, updates and displays
// groups, grounded on _examples/original_source/admin.py.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/englishtime"
	"github.com/go-while/pnntprss/internal/feedsource"
	"github.com/go-while/pnntprss/internal/poller"
	"github.com/go-while/pnntprss/internal/store"
)

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	addGroup := flag.Bool("a", false, "add a new group")
	deleteGroup := flag.Bool("d", false, "delete the named groups")
	uri := flag.String("u", "", "feed URI (required with -a)")
	lifetime := flag.String("l", "", "article lifetime, e.g. \"3 days\"")
	fixdates := flag.Bool("fixdates", false, "backfill missing feed_updated_parsed on stored articles")
	wipe := flag.Bool("wipe", false, "remove all articles and reset config to just the feed href")
	flag.Parse()
	args := flag.Args()

	settings := config.NewDefault()
	if err := settings.EnsureDirs(); err != nil {
		fatal("pnntprss-admin: %v", err)
	}

	var overrideLifetime *int
	if *lifetime != "" {
		secs, err := englishtime.ParseInterval(*lifetime)
		if err != nil {
			fatal("pnntprss-admin: invalid -l value: %v", err)
		}
		n := int(secs)
		overrideLifetime = &n
	}

	ctx := context.Background()

	switch {
	case *uri != "":
		if len(args) != 1 {
			fatal("There should be exactly one group name")
		}
		runWithURI(ctx, settings, args[0], *uri, *addGroup, overrideLifetime)

	case *addGroup:
		fatal("Feed URI not specified")

	case *fixdates:
		for _, name := range args {
			fixDates(settings, name)
		}

	case *wipe:
		for _, name := range args {
			wipeGroup(settings, name)
		}

	case *deleteGroup:
		for _, name := range args {
			g, err := store.Load(settings, name)
			if err != nil {
				log.Printf("pnntprss-admin: %s: %v", name, err)
				continue
			}
			if err := g.Delete(); err != nil {
				log.Printf("pnntprss-admin: delete %s: %v", name, err)
			}
		}

	case overrideLifetime != nil:
		for _, name := range args {
			updateLifetime(settings, name, *overrideLifetime)
		}

	case len(args) == 0:
		names, err := store.ListGroups(settings)
		if err != nil {
			fatal("pnntprss-admin: %v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}

	default:
		for _, name := range args {
			displayGroup(settings, name)
		}
	}
}

func runWithURI(ctx context.Context, settings *config.Settings, name, uri string, add bool, overrideLifetime *int) {
	client := feedsource.NewHTTPClient(time.Duration(settings.SocketTimeoutSecs) * time.Second)
	href, err := feedsource.FindFeed(ctx, client, uri, settings.UserAgent)
	if err != nil {
		fatal("Could not find a valid feed at %s: %v", uri, err)
	}

	cfg := &store.Config{Href: href}
	if overrideLifetime != nil {
		cfg.ArticleLifetime = *overrideLifetime
	}

	p := poller.New(settings)

	if add {
		g, err := store.Create(settings, name, cfg)
		if err != nil {
			fatal("pnntprss-admin: create %s: %v", name, err)
		}
		if err := p.Poll(ctx, g); err != nil {
			log.Printf("pnntprss-admin: initial poll of %s failed, removing group: %v", name, err)
			g.Delete()
			os.Exit(1)
		}
		return
	}

	g, err := store.Load(settings, name)
	if err != nil {
		fatal("pnntprss-admin: %s: %v", name, err)
	}
	existing, err := g.LoadConfig()
	if err != nil {
		fatal("pnntprss-admin: %s: %v", name, err)
	}
	existing.Href = cfg.Href
	if overrideLifetime != nil {
		existing.ArticleLifetime = *overrideLifetime
	}
	if err := g.SaveConfig(existing); err != nil {
		fatal("pnntprss-admin: %s: %v", name, err)
	}
	if err := p.Poll(ctx, g); err != nil {
		log.Printf("pnntprss-admin: poll of %s failed: %v", name, err)
	}
}

func fixDates(settings *config.Settings, name string) {
	g, err := store.Load(settings, name)
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}
	n, err := poller.FixDates(g)
	if err != nil {
		log.Printf("pnntprss-admin: fixdates %s: %v", name, err)
		return
	}
	if n > 0 {
		log.Printf("pnntprss-admin: fixed %d article(s) in %s", n, name)
	}
}

func wipeGroup(settings *config.Settings, name string) {
	g, err := store.Load(settings, name)
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}
	if err := g.Wipe(); err != nil {
		log.Printf("pnntprss-admin: wipe %s: %v", name, err)
	}
}

func updateLifetime(settings *config.Settings, name string, lifetime int) {
	g, err := store.Load(settings, name)
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}
	cfg.ArticleLifetime = lifetime
	if err := g.SaveConfig(cfg); err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
	}
}

func displayGroup(settings *config.Settings, name string) {
	g, err := store.Load(settings, name)
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		log.Printf("pnntprss-admin: %s: %v", name, err)
		return
	}

	fmt.Println("Feed URI:", cfg.Href)
	if cfg.Link != "" {
		fmt.Println("Feed homepage URI:", cfg.Link)
	}
	if cfg.Interval != 0 {
		fmt.Println("Poll interval:", englishtime.DescribeInterval(int64(cfg.Interval)))
	}
	if cfg.LastPolled != 0 {
		fmt.Println("Last successful poll time:", time.Unix(cfg.LastPolled, 0).Local().Format("2006-01-02 15:04:05"))
	}
	if cfg.ArticleLifetime != 0 {
		fmt.Println("Article lifetime:", englishtime.DescribeInterval(int64(cfg.ArticleLifetime)))
	}
}
