package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
	"github.com/appetiteclub/bodbridge/internal/zone"
)

// RefreshZones rebuilds the local zone cache file from its configured sources
func RefreshZones(ctx context.Context, config *apt.Config, logger apt.Logger) error {
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

	var sources []zone.Source
	if helper := os.Getenv(zone.RefreshHelperEnv); helper != "" {
		logger.Info("Using zone refresh helper", "command", helper)
		sources = append(sources, zone.NewCommandSource(helper))
	}
	sources = append(sources, zone.NewDirectorySource(client))

	zoneFile, _ := config.GetString("zone.file")
	if zoneFile == "" {
		zoneFile = "zone_cache.json"
	}

	cache := zone.NewCache(zoneFile, zone.ExpirationFromEnv(), sources, logger)
	if err := cache.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh zone cache: %w", err)
	}

	raw, err := os.ReadFile(zoneFile)
	if err != nil {
		return fmt.Errorf("read zone cache file: %w", err)
	}
	var snapshot map[string]zone.Entry
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("parse zone cache file: %w", err)
	}

	logger.Infof("Zone cache %s now maps %d locations", zoneFile, len(snapshot))
	return nil
}
