// Command substationd runs the Substation daemon in the foreground. It is
// the entrypoint to use under a process supervisor such as systemd; the
// interactive equivalent is "substation daemon run".
package main

import (
	"context"
	"flag"
	"log"

	"substation/internal/config"
	"substation/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("substationd: %v", err)
	}
}
