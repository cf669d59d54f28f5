// Command transitq runs a single transit query against the configured
// provider and prints the result as JSON.
//
//	transitq [flags] route FROM TO
//	transitq [flags] stations QUERY
//	transitq [flags] nearby LAT LON [RADIUS]
//	transitq [flags] departures STATION
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
