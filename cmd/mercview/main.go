package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/omniscale/mercview"
	"github.com/omniscale/mercview/config"
	"github.com/omniscale/mercview/log"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tproject [args] lng,lat[,z] ...")
	fmt.Fprintln(os.Stderr, "\tunproject [args] x,y[,depth] ...")
	fmt.Fprintln(os.Stderr, "\tfit [args]")
	fmt.Fprintln(os.Stderr, "\ttiles [args]")
	fmt.Fprintln(os.Stderr, "\tscales [args]")
	fmt.Fprintln(os.Stderr, "\tversion")
	fmt.Fprintln(os.Stderr, "\nUse -- before coordinates with a leading minus.")
}

func usageCmd(cmd string) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s [args]\n\n", os.Args[0], cmd)
	config.Usage(os.Stderr, cmd)
}

func Main(usage func()) {
	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "version":
		fmt.Printf("%s %s(%s-%s)\n", mercview.Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
		os.Exit(0)
	case "project", "unproject", "fit", "tiles", "scales":
	default:
		usage()
		log.Fatalf("invalid command: '%s'", cmd)
	}

	opts, err := config.Parse(cmd, os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "errors in config/options:")
		fmt.Fprintf(os.Stderr, "\t%s\n\n", err)
		usageCmd(cmd)
		os.Exit(2)
	}
	if opts.Quiet {
		log.SetMinLevel(log.LWarn)
	}
	if opts.Debug {
		log.SetMinLevel(log.LDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, opts); err != nil {
		log.Fatalf("%s: %+v", cmd, err)
	}
}

func main() {
	Main(PrintCmds)
}
