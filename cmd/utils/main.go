package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/bodbridge/cmd/utils/internal/commands"
)

const (
	appName    = "bodbridge-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load config from UTILS namespace so the service env stays untouched
	config, err := apt.LoadConfig("UTILS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "list-calls":
		if err := commands.ListCalls(ctx, config, logger); err != nil {
			log.Fatalf("❌ Listing call configs failed: %v", err)
		}

	case "list-zones":
		if err := commands.ListZones(ctx, config, logger); err != nil {
			log.Fatalf("❌ Listing zones failed: %v", err)
		}

	case "refresh-zones":
		if err := commands.RefreshZones(ctx, config, logger); err != nil {
			log.Fatalf("❌ Zone cache refresh failed: %v", err)
		}
		logger.Info("✅ Zone cache refreshed successfully")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - bodbridge utility commands

Usage:
  %s <command> [options]

Commands:
  list-calls     Print the call configs the labor-dispatch API exposes
  list-zones     Print the zones the labor-dispatch API exposes
  refresh-zones  Rebuild the local zone cache file from its sources
  version        Print version information
  help           Show this help message

Environment Variables:
  UTILS_API_URL             Labor-dispatch API base URL (default: http://localhost:9080)
  UTILS_CREDENTIALS_FILE    Credentials file with site, username and password lines (default: bod_credentials)
  UTILS_ZONE_FILE           Zone cache file path (default: zone_cache.json)
  UTILS_LOG_LEVEL           Log level: debug, info, warn, error (default: info)
  ZONEFILE_REFRESH_HELPER   Optional executable whose stdout replaces the zone cache file
  ZONEFILE_EXPIRATION_TIME  Zone cache expiration in seconds (default: 3600)

Examples:
  %s list-calls
  UTILS_API_URL=https://dispatch.example.com %s list-zones
  %s refresh-zones

`, appName, appName, appName, appName, appName)
}
