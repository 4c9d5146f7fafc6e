package app

import (
	"github.com/rs/zerolog"

	"github.com/dvcrn/go-mal/internal/server"
	"github.com/dvcrn/go-mal/mal"
)

// NewServer creates a new proxy server instance backed by the given client
func NewServer(client *mal.Client, logger zerolog.Logger) *server.Server {
	return server.New(logger, client)
}
