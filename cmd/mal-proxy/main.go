package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvcrn/go-mal/credentials"
	"github.com/dvcrn/go-mal/internal/app"
	"github.com/dvcrn/go-mal/logger"
	"github.com/dvcrn/go-mal/mal"
)

func main() {
	godotenv.Load()

	clientID := flag.String("client-id", os.Getenv("MAL_CLIENT_ID"), "OAuth client ID")
	clientSecret := flag.String("client-secret", os.Getenv("MAL_CLIENT_SECRET"), "OAuth client secret")
	credsPath := flag.String("creds-path", credentials.DefaultCredsPath(), "Path to the auth.json token file")
	useEnv := flag.Bool("use-env-creds", false, "Read tokens from MAL_ACCESS_TOKEN/MAL_REFRESH_TOKEN instead of the token file")
	flag.Parse()

	log := logger.New()

	var store credentials.Store
	if *useEnv {
		store = credentials.NewEnvStore()
		log.Info().Msg("Using environment token store (read-only, refreshed tokens are not persisted)")
	} else {
		store = credentials.NewFSStore(*credsPath)
		log.Info().Str("path", *credsPath).Msg("Using filesystem token store")
	}

	client, err := mal.New(mal.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		Store:        store,
		Logger:       &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}

	validateTokensAtStartup(client, log)

	srv := app.NewServer(client, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9880"
	}

	log.Info().Str("port", port).Msg("Starting proxy")
	log.Fatal().Err(http.ListenAndServe(":"+port, srv)).Msg("Proxy failed to start")
}

func validateTokensAtStartup(client *mal.Client, log zerolog.Logger) {
	pair, err := client.Tokens()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read token store at startup")
		return
	}

	switch {
	case pair.AccessToken != "":
		log.Info().Int("token_length", len(pair.AccessToken)).Msg("Access token loaded")
	case pair.RefreshToken != "":
		log.Warn().Msg("No access token stored, will refresh on first request")
	default:
		log.Warn().Msg("No tokens stored yet, run mal-auth to authorize")
	}
}
