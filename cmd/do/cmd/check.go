package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type check struct {
	name string
	bin  string
	args []string
	// failOnOutput treats any stdout as a failure (gofmt -l lists unformatted files)
	failOnOutput bool
}

var checks = []check{
	{name: "gofmt", bin: "gofmt", args: []string{"-l", "cmd", "internal"}, failOnOutput: true},
	{name: "vet", bin: "go", args: []string{"vet", "./..."}},
	{name: "test", bin: "go", args: []string{"test", "-race", "./..."}},
}

func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run gofmt, go vet and go test in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(cmd.Context())
		},
	}
}

func runChecks(ctx context.Context) error {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	for _, c := range checks {
		g.Go(func() error {
			checkStart := time.Now()
			err := c.run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			fmt.Printf("[%s] done (%s)\n", c.name, time.Since(checkStart).Round(time.Millisecond))
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return err
	}

	fmt.Printf("done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func (c check) run(ctx context.Context) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, c.args...)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if out.Len() > 0 {
		fmt.Printf("[%s]\n%s", c.name, out.String())
	}
	if err != nil {
		return err
	}
	if c.failOnOutput && strings.TrimSpace(out.String()) != "" {
		return fmt.Errorf("unexpected output")
	}
	return nil
}
