package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	widthsKey     = "widths"
	heightsKey    = "heights"
	iterationsKey = "iterations"
)

func propagateCommand() *cli.Command {
	return &cli.Command{
		Name:  "propagate",
		Usage: "Time writes to a source read by w chains of h computeds, each observed by an autorun",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:  widthsKey,
				Usage: "Numbers of chains",
				Value: []int64{1, 10, 100, 1_000},
			},
			&cli.IntSliceFlag{
				Name:  heightsKey,
				Usage: "Chain lengths",
				Value: []int64{1, 10, 100, 1_000},
			},
			&cli.IntFlag{
				Name:  iterationsKey,
				Usage: "Writes per graph",
				Value: 100,
			},
			cpuProfileFlag(),
		},
		Action: withProfile(propagate),
	}
}

func addOne(oldValue int) int {
	return oldValue + 1
}

func propagate(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Int(iterationsKey))

	tbl := table.NewWriter()
	tbl.SetTitle("mobx propagate")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range cmd.IntSlice(widthsKey) {
		for _, h := range cmd.IntSlice(heightsKey) {
			log.Printf("propagate: %d * %d", w, h)
			calc, err := propagateOnce(int(w), int(h), iters)
			if err != nil {
				return err
			}
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	tbl.Render()
	return nil
}

func propagateOnce(w, h, iters int) (*tachymeter.Metrics, error) {
	var runErr error
	rs := mobx.CreateReactiveSystem(func(reaction string, err error) {
		runErr = fmt.Errorf("%s: %w", reaction, err)
	})

	src := mobx.Observable(rs, 1)
	for i := 0; i < w; i++ {
		var last func() int = src.Value
		for j := 0; j < h; j++ {
			prev := last
			last = mobx.Computed(rs, func(oldValue int) int {
				return addOne(prev())
			}).Value
		}

		leaf := last
		if _, err := mobx.Autorun(rs, func() error {
			if got, want := leaf(), src.Value()+h; got != want {
				return fmt.Errorf("chain %d: got %d, want %d", i, got, want)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Update(addOne)
		tach.AddTime(time.Since(start))
		if runErr != nil {
			return nil, runErr
		}
	}
	return tach.Calc(), nil
}
