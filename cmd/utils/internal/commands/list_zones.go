package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

// ListZones prints every zone the labor-dispatch API exposes
func ListZones(ctx context.Context, config *apt.Config, logger apt.Logger) error {
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

	zones, err := client.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}

	logger.Infof("Fetched %d zones from %s", len(zones), apiURL)
	for _, z := range zones {
		fmt.Printf("%6d  %s\n", z.ID, z.Description)
	}

	return nil
}
