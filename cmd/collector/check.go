package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkLocal bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and reach the storage and tracker backends",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	cmd.Flags().BoolVar(&checkLocal, "local", false, "Check the local backends instead of the configured ones")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := loadApp(ctx, checkLocal)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config   ok  %s (%d datasets)\n", configPath, a.catalog.Len())

	failed := 0
	for _, c := range []struct {
		name    string
		backend any
	}{
		{"storage", a.sink},
		{"tracker", a.store},
	} {
		p, ok := c.backend.(pinger)
		if !ok {
			fmt.Fprintf(out, "%-8s ok  local\n", c.name)
			continue
		}
		if err := p.Ping(ctx); err != nil {
			failed++
			fmt.Fprintf(out, "%-8s ERR %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "%-8s ok\n", c.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d backend(s) unreachable", failed)
	}
	return nil
}
