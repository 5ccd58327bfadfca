package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kouhin/envflag"
	"github.com/mdbot/gitwiki/config"
	"github.com/mdbot/gitwiki/gitstore"
	"github.com/mdbot/gitwiki/wiki"
)

var (
	workDir    = flag.String("workdir", "./data", "Working directory")
	configFile = flag.String("config", "wiki.yaml", "Path to the YAML config file")
	listen     = flag.String("listen", "", "Address to listen on, overriding the config file")
)

func main() {
	err := envflag.Parse()
	if err != nil {
		log.Fatalf("Unable to parse flags: %s", err.Error())
	}

	settings, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Unable to load config: %s", err.Error())
	}
	if *listen != "" {
		settings.Server.Listen = *listen
	}

	backend, err := gitstore.NewGitBackend(*workDir, settings.Media.Dir)
	if err != nil {
		log.Fatalf("Unable to open working directory: %s", err.Error())
	}

	resolver, err := settings.Resolver()
	if err != nil {
		log.Fatalf("Unable to load aliases: %s", err.Error())
	}

	w := wiki.New(backend, resolver, settings.WikiOptions())
	router := NewRouter(w, backend, settings)

	log.Printf("Starting %s on %s.", settings.Application.Title, settings.Server.Listen)
	server := http.Server{
		Addr:    settings.Server.Listen,
		Handler: router,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Unable to listen: %s", err.Error())
		}
	}()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Unable to shutdown: %s", err.Error())
	}
	log.Print("Finishing server.")
}
