package main

import (
	"flag"
	"fmt"
	"os"
	"tsd/internal/di"
	"tsd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "./config.yaml", "path to config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "duplicate logs to stdout")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsd: %s\n", err)
		os.Exit(1)
	}
}
