package cmd

import (
	"os"

	"github.com/salmonumbrella/tablecheck/internal/logging"
	"github.com/salmonumbrella/tablecheck/internal/secrets"
	"github.com/salmonumbrella/tablecheck/internal/source"
)

var (
	openSecretsStore = secrets.Open
	envGet           = os.Getenv
	newLoaderFunc    = source.NewLoader
	setupLoggerFunc  = logging.SetupLogger
)
