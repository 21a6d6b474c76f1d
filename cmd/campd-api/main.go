// README: Entry point; loads config, wires stores and services, serves the HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"campd/internal/config"
	httptransport "campd/internal/http"
	"campd/internal/infra"
	"campd/internal/modules/catalog"
	"campd/internal/modules/location"
	"campd/internal/modules/pricing"
	"campd/internal/modules/request"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	places, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	var (
		repo         request.Repository
		pricingStore *pricing.Store
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer dbPool.Close()
		repo = request.NewPGStore(dbPool)
		pricingStore = pricing.NewStore(dbPool)
	default:
		db, err := infra.OpenBolt(cfg.Store.BoltPath)
		if err != nil {
			log.Fatalf("bolt: %v", err)
		}
		defer db.Close()
		boltStore, err := request.NewBoltStore(db)
		if err != nil {
			log.Fatalf("bolt: %v", err)
		}
		repo = boltStore
	}
	log.Printf("storage: %s", cfg.Store.Driver)

	var geocoder location.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := location.NewGoogleGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("geocoder: %v", err)
		}
		geocoder = g
	} else {
		log.Printf("geocoder disabled; only catalog locations resolve")
	}

	var geocodeCache *location.Store
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		geocodeCache = location.NewStore(redisClient, cfg.Maps.GeocodeTTL)
	}

	var publisher request.Publisher = request.NopPublisher{}
	if cfg.AMQP.URL != "" {
		mq, err := infra.NewRabbitMQ(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer mq.Close()
		publisher = request.NewBrokerPublisher(mq)
	}

	locationSvc := location.NewService(places.Campuses, geocoder, geocodeCache)
	pricingSvc := pricing.NewService(pricingStore, places.ShopperBases, cfg.Pricing.Preset)
	if seeded, err := pricingSvc.SeedPresets(ctx); err != nil {
		log.Fatalf("pricing presets: %v", err)
	} else if len(seeded) > 0 {
		log.Printf("pricing: seeded presets %v", seeded)
	}
	requestSvc := request.NewService(repo, pricingSvc, locationSvc, publisher)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Requests:  requestSvc,
		Campuses:  places.Campuses,
		Bases:     places.ShopperBases,
		AccessKey: cfg.HTTP.AccessKey,
		ListLimit: cfg.HTTP.ListLimit,
	})

	if err := httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		log.Fatal(err)
	}
}
