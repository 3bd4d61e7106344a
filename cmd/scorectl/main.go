package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johnquangdev/practice-scoring/pkg/scoreclient"
)

// Drives the get-my-score flow for one session against a running API and
// prints each state change.
func main() {
	api := flag.String("api", "http://localhost:8080/v1", "API base URL including /v1")
	token := flag.String("token", os.Getenv("SCORECTL_TOKEN"), "bearer token (defaults to $SCORECTL_TOKEN)")
	session := flag.String("session", "", "practice session ID")
	interval := flag.Duration("interval", scoreclient.DefaultPollInterval, "status poll interval")
	flag.Parse()

	if *session == "" {
		fmt.Fprintln(os.Stderr, "scorectl: -session is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	controller := scoreclient.NewController(
		scoreclient.New(*api, *token),
		scoreclient.WithPollInterval(*interval),
		scoreclient.WithTransitionHook(func(from, to scoreclient.State) {
			log.Printf("%s -> %s (%s)", from, to, time.Since(started).Round(time.Millisecond))
		}),
	)

	out := controller.GetScore(ctx, *session)
	switch out.State {
	case scoreclient.StateScored:
		fmt.Printf("scored: scorecard %s (run %s)\n", out.ScorecardID, out.RunID)
	case scoreclient.StateError:
		fmt.Printf("error: %s\n", out.Message)
		if out.Err != nil {
			log.Printf("cause: %v", out.Err)
		}
		os.Exit(1)
	default:
		fmt.Println("cancelled")
		os.Exit(130)
	}
}
