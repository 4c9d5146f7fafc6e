package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dvcrn/go-mal/auth"
	"github.com/dvcrn/go-mal/credentials"
	"github.com/dvcrn/go-mal/logger"
	"github.com/dvcrn/go-mal/mal"
)

func main() {
	godotenv.Load()

	clientID := flag.String("client-id", os.Getenv("MAL_CLIENT_ID"), "OAuth client ID")
	clientSecret := flag.String("client-secret", os.Getenv("MAL_CLIENT_SECRET"), "OAuth client secret")
	redirectURI := flag.String("redirect-uri", os.Getenv("MAL_REDIRECT_URI"), "Registered redirect URI (optional)")
	credsPath := flag.String("creds-path", credentials.DefaultCredsPath(), "Path to write the auth.json token file")
	flag.Parse()

	log := logger.New()

	client, err := mal.New(mal.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		Store:        credentials.NewFSStore(*credsPath),
		Logger:       &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}

	state, err := auth.GenerateState()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate state")
	}

	authURL, err := client.OAuthURL(auth.URLOptions{
		RedirectURI: *redirectURI,
		State:       state,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build authorization URL")
	}

	fmt.Println("Open this URL in your browser and authorize the application:")
	fmt.Println()
	fmt.Println("  " + authURL.URL)
	fmt.Println()
	fmt.Print("Paste the authorization code from the redirect: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read authorization code")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		log.Fatal().Msg("No authorization code provided")
	}

	// Plain PKCE: the challenge from the URL is the verifier
	if _, err := client.ExchangeAuthorizationCode(context.Background(), code, authURL.CodeChallenge, *redirectURI); err != nil {
		log.Fatal().Err(err).Msg("Failed to exchange authorization code")
	}

	log.Info().Str("path", *credsPath).Msg("Tokens saved, you're authorized")
}
