//go:build js && wasm

package main

import (
	"os"

	"github.com/syumai/workers"

	"github.com/dvcrn/go-mal/credentials"
	"github.com/dvcrn/go-mal/internal/app"
	"github.com/dvcrn/go-mal/logger"
	"github.com/dvcrn/go-mal/mal"
)

func main() {
	log := logger.New()

	log.Info().Msg("Using Cloudflare KV token store")
	store, err := credentials.NewCloudflareKVStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Cloudflare KV store")
	}

	client, err := mal.New(mal.Config{
		ClientID:     os.Getenv("MAL_CLIENT_ID"),
		ClientSecret: os.Getenv("MAL_CLIENT_SECRET"),
		Store:        store,
		Logger:       &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}

	srv := app.NewServer(client, log)

	// workers handles all the HTTP server setup
	workers.Serve(srv)
}
