package main

import (
	"context"
	"fmt"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/mobx-go/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	maxValuesKey = "count"
	outKey       = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the multi-value reactions of the mobx package",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  maxValuesKey,
				Usage: "Generate Reaction2 up to ReactionN for this N",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  outKey,
				Usage: "File to write",
				Value: "mobx/reaction_gen.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for mobx started")
	defer func() {
		log.Printf("Codegen for mobx finished in %v", time.Since(start))
	}()

	count := int(cmd.Uint(maxValuesKey))
	if count < 2 {
		return fmt.Errorf("%s must be at least 2, got %d", maxValuesKey, count)
	}
	log.Printf("Generating Reaction2 to Reaction%d", count)

	contents, err := format.Source([]byte(templates.ReactionsGen(count)))
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	return os.WriteFile(cmd.String(outKey), contents, 0644)
}
