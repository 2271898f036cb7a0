package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/zerotri/zero/app"
	"github.com/zerotri/zero/host"
	"github.com/zerotri/zero/jobs"
)

func main() {
	var cfg host.HeadlessConfig
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 120, "Tick rate.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Parse()

	pools := jobs.NewPools(jobs.PoolConfig{})
	w := jobs.NewWorker(pools)
	fb := host.NewFramebuffer(320, 240)
	step := app.New(w, fb)

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := host.RunHeadless(ctx, cfg, step); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := host.RunWindow(host.WindowConfig{Title: "zero jobs", TPS: cfg.Hz}, fb, step); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
