package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

// ListCalls prints every call config the labor-dispatch API exposes
func ListCalls(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	apiURL, _ := config.GetString("api.url")
	if apiURL == "" {
		apiURL = "http://localhost:9080"
	}

	credsFile, _ := config.GetString("credentials.file")
	if credsFile == "" {
		credsFile = "bod_credentials"
	}
	creds, err := dispatch.LoadCredentials(credsFile)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	client, err := dispatch.NewHTTPClient(apiURL, creds.Site, creds.Username, creds.Password, logger)
	if err != nil {
		return fmt.Errorf("build dispatch client: %w", err)
	}

	calls, err := client.ListCallConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list call configs: %w", err)
	}

	logger.Infof("Fetched %d call configs from %s", len(calls), apiURL)
	for _, call := range calls {
		fmt.Printf("%6d  %s\n", call.ID, call.Description)
	}

	return nil
}
