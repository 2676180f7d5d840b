package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrs-engineer/gemini-router/internal/config"
	"github.com/jrs-engineer/gemini-router/pkg/backend"
)

const version = "1.0.0"

func main() {
	var cfgPath string
	var showVersion bool
	flag.StringVar(&cfgPath, "config", "", "path to config yaml (optional; env vars alone suffice)")
	flag.StringVar(&cfgPath, "c", "", "path to config yaml (alias of --config)")
	flag.BoolVar(&showVersion, "V", false, "show version information")
	flag.Parse()

	if showVersion {
		fmt.Println("gemini-router " + version)
		return
	}

	settings, err := config.Load(cfgPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}

	if settings.Gemini.APIKey == "" {
		log.Printf("Warning: GEMINI_API_KEY is not set; upstream calls will fail")
	}

	shutdown := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		close(shutdown)
	}()

	srv := backend.NewServer(settings)
	if err := srv.ListenAndServeWithGracefulShutdown(shutdown); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
