package daemon

import (
	"net/http"

	"github.com/mintbay/nft-marketplace/internal/api"
	"github.com/mintbay/nft-marketplace/internal/config"
	"github.com/mintbay/nft-marketplace/internal/custodian"
	"github.com/mintbay/nft-marketplace/internal/elastic_search"
	"github.com/mintbay/nft-marketplace/internal/marketplace"
	"go.uber.org/zap"
)

type Daemon struct {
	elastic   elastic_search.Index
	registry  marketplace.Registry
	directory *custodian.Directory
	server    api.Server
}

func NewDaemon(
	elastic elastic_search.Index,
	registry marketplace.Registry,
	directory *custodian.Directory,
	server api.Server,
) *Daemon {
	return &Daemon{elastic, registry, directory, server}
}

func (d *Daemon) Execute() {
	d.elastic.InstallMappings()

	d.bootstrap()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace API listening")
	if err := http.ListenAndServe(":"+config.Get().ApiPort, d.server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace API")
	}
}

// bootstrap registers the marketplace as a safe-transfer receiver and seeds
// the configured collections.
func (d *Daemon) bootstrap() {
	d.directory.RegisterReceiver(d.registry.Address(), d.registry)

	for _, contract := range config.Get().Collections {
		if _, err := d.directory.AddCollection(contract); err != nil {
			zap.L().With(zap.Error(err), zap.String("contract", contract)).Warn("Failed to seed collection")
		}
	}
}
