package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"ridehub.org/transit/internal/app"
	"ridehub.org/transit/internal/appconf"
	"ridehub.org/transit/internal/logging"
	"ridehub.org/transit/internal/query"
)

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitInvalidInput
	exitNoResult
	exitUpstream
	exitInternal
)

const defaultRadius = 1000.0

var errUsage = errors.New("usage: transitq [flags] route FROM TO | stations QUERY | nearby LAT LON [RADIUS] | departures STATION")

// failure is printed to stdout when a query ends without a result.
type failure struct {
	Error      string              `json:"error"`
	Kind       string              `json:"kind"`
	Fields     map[string][]string `json:"fieldErrors,omitempty"`
	Endpoints  []string            `json:"endpoints,omitempty"`
	Candidates map[string][]string `json:"candidates,omitempty"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, rest, err := appconf.LoadWithArgs("transitq", args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := logging.NewStructuredLogger(stderr, logging.ParseLevel(cfg.Log.Level))

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInternal
	}
	defer logging.SafeCloseWithLogging(application, logger, "application")

	result, err := execute(ctx, application.Transit, rest)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err != nil {
		return report(stdout, stderr, err)
	}

	if err := writeJSON(stdout, result); err != nil {
		fmt.Fprintln(stderr, err)
		return exitInternal
	}
	return exitOK
}

func execute(ctx context.Context, svc *query.Service, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, errUsage
	}

	switch cmd, params := args[0], args[1:]; cmd {
	case "route":
		if len(params) != 2 {
			return nil, errUsage
		}
		return svc.SearchRoute(ctx, params[0], params[1])
	case "stations":
		if len(params) != 1 {
			return nil, errUsage
		}
		return svc.SearchStations(ctx, params[0])
	case "nearby":
		if len(params) < 2 || len(params) > 3 {
			return nil, errUsage
		}
		coords := make([]float64, 0, 3)
		for _, p := range params {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", errUsage, p)
			}
			coords = append(coords, v)
		}
		radius := defaultRadius
		if len(coords) == 3 {
			radius = coords[2]
		}
		return svc.SearchNearbyStations(ctx, coords[0], coords[1], radius)
	case "departures":
		if len(params) != 1 {
			return nil, errUsage
		}
		return svc.GetDepartures(ctx, params[0])
	default:
		return nil, errUsage
	}
}

func report(stdout, stderr io.Writer, err error) int {
	var qerr *query.Error
	if !errors.As(err, &qerr) {
		logging.LogError(slog.New(slog.NewTextHandler(stderr, nil)), "query failed", err)
		return exitInternal
	}

	out := failure{
		Error:      qerr.Error(),
		Kind:       qerr.Kind.String(),
		Fields:     qerr.Fields,
		Endpoints:  qerr.Endpoints,
		Candidates: qerr.Candidates,
	}
	if werr := writeJSON(stdout, out); werr != nil {
		fmt.Fprintln(stderr, werr)
	}

	switch qerr.Kind {
	case query.KindInvalidInput:
		return exitInvalidInput
	case query.KindAmbiguousLocation, query.KindNotFound:
		return exitNoResult
	case query.KindUpstreamUnavailable:
		return exitUpstream
	default:
		return exitInternal
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
