package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/bodbridge/internal/bridge"
	"github.com/appetiteclub/bodbridge/internal/dispatch"
	"github.com/appetiteclub/bodbridge/internal/zone"
	"github.com/appetiteclub/bodbridge/pkg"
)

const (
	appNamespace = "BODBRIDGE"

	defaultPort      = "4567"
	defaultAPIURL    = "http://localhost:9080"
	defaultCredsFile = "bod_credentials"
	defaultZoneFile  = "zone_cache.json"
)

func main() {
	// The vendor integration historically listens on 4567 unless told
	// otherwise; seed the namespaced key so LoadConfig picks it up.
	if os.Getenv("BODBRIDGE_WEB_PORT") == "" {
		os.Setenv("BODBRIDGE_WEB_PORT", defaultPort)
	}

	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", bridge.AppName, bridge.AppVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	credsFile := config.GetStringOrDef("credentials.file", defaultCredsFile)
	creds, err := dispatch.LoadCredentials(credsFile)
	if err != nil {
		log.Fatalf("%s(%s) cannot load credentials, want a file with site, username and password lines: %v", bridge.AppName, bridge.AppVersion, err)
	}

	apiURL := config.GetStringOrDef("api.url", defaultAPIURL)
	client, err := dispatch.NewHTTPClient(apiURL, creds.Site, creds.Username, creds.Password, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot build labor-dispatch client: %v", bridge.AppName, bridge.AppVersion, err)
	}

	var sources []zone.Source
	if helper := os.Getenv(zone.RefreshHelperEnv); helper != "" {
		logger.Info("using zone refresh helper", "command", helper)
		sources = append(sources, zone.NewCommandSource(helper))
	}
	sources = append(sources, zone.NewDirectorySource(client))

	zoneFile := config.GetStringOrDef("zone.file", defaultZoneFile)
	zones := zone.NewCache(zoneFile, zone.ExpirationFromEnv(), sources, logger)

	var publisher events.Publisher
	var lifecycles []interface{}
	if natsURL := config.GetStringOrDef("nats.url", ""); natsURL != "" {
		pub, err := pkg.NewNATSPublisher(natsURL, bridge.AppName)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", bridge.AppName, bridge.AppVersion, err)
		}
		publisher = pub
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error {
				return pub.Close()
			},
		})
	}

	br := bridge.NewBridge(client, zones, publisher, logger)
	handler := bridge.NewHandler(br, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(bridge.AppName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", bridge.AppName, bridge.AppVersion)

	err = ms.Run(ctx)
	if err != nil {
		log.Fatalf("%s(%s) stopped: %v", bridge.AppName, bridge.AppVersion, err)
	}

	logger.Infof("%s(%s) stopped", bridge.AppName, bridge.AppVersion)
}
