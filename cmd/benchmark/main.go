package main

import (
	"context"
	"log"
	"os"
	"runtime/pprof"

	"github.com/urfave/cli/v3"
)

const cpuProfileKey = "cpuprofile"

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Benchmark the mobx reactive system",
		Commands: []*cli.Command{
			propagateCommand(),
			graphCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func cpuProfileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  cpuProfileKey,
		Usage: "Write a CPU profile to this file (e.g. default.pgo)",
	}
}

// withProfile wraps an action so it runs under the CPU profiler when the
// cpuprofile flag is set.
func withProfile(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.String(cpuProfileKey)
		if path == "" {
			return action(ctx, cmd)
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
		return action(ctx, cmd)
	}
}
