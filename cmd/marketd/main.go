package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mintbay/nft-marketplace/internal/config"
	"github.com/mintbay/nft-marketplace/internal/config/di"
	"github.com/mintbay/nft-marketplace/internal/daemon"
	"github.com/mintbay/nft-marketplace/internal/event"
	"github.com/mintbay/nft-marketplace/internal/indexer"
	"github.com/mintbay/nft-marketplace/internal/messenger"
	sdi "github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var container sdi.Container

func main() {
	config.Init("marketd")

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	go health()

	zap.L().With(zap.String("port", config.Get().HealthPort)).Info("Marketplace Started")

	listingIndexer := container.Get("listing.indexer").(indexer.ListingIndexer)
	event.AddEventListener(event.ListingCreatedEvent, listingIndexer.OnListingCreated)
	event.AddEventListener(event.ListingPriceChangedEvent, listingIndexer.OnListingPriceChanged)
	event.AddEventListener(event.ListingRemovedEvent, listingIndexer.OnListingRemoved)
	event.AddEventListener(event.ListingSoldEvent, listingIndexer.OnListingSold)

	if config.Get().Amqp.Enabled {
		publisher := container.Get("publisher").(messenger.Publisher)
		event.AddEventListener(event.ListingCreatedEvent, publisher.OnListingCreated)
		event.AddEventListener(event.ListingPriceChangedEvent, publisher.OnListingPriceChanged)
		event.AddEventListener(event.ListingRemovedEvent, publisher.OnListingRemoved)
		event.AddEventListener(event.ListingSoldEvent, publisher.OnListingSold)
		event.AddEventListener(event.FeePercentageChangedEvent, publisher.OnFeePercentageChanged)
	}

	container.Get("daemon").(*daemon.Daemon).Execute()
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health endpoint")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
