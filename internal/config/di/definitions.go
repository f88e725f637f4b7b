package di

import (
	"github.com/mintbay/nft-marketplace/internal/api"
	"github.com/mintbay/nft-marketplace/internal/config"
	"github.com/mintbay/nft-marketplace/internal/custodian"
	"github.com/mintbay/nft-marketplace/internal/daemon"
	"github.com/mintbay/nft-marketplace/internal/elastic_search"
	"github.com/mintbay/nft-marketplace/internal/indexer"
	"github.com/mintbay/nft-marketplace/internal/ledger"
	"github.com/mintbay/nft-marketplace/internal/marketplace"
	"github.com/mintbay/nft-marketplace/internal/messenger"
	"github.com/mintbay/nft-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			return ledger.NewBank(), nil
		},
	},
	{
		Name: "custodian.directory",
		Build: func(ctn di.Container) (interface{}, error) {
			return custodian.NewDirectory(), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			return marketplace.NewRegistry(
				config.Get().MarketAddress,
				config.Get().OwnerAddress,
				config.Get().FeePercentage,
				marketplace.NewListingStore(),
				ctn.Get("custodian.directory").(*custodian.Directory),
				ctn.Get("ledger").(*ledger.Bank),
			), nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "listing.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewListingIndexer(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Amqp.Uri), nil
		},
	},
	{
		Name: "publisher",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewPublisher(ctn.Get("messenger").(messenger.MessageService)), nil
		},
	},
	{
		Name: "api.server",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("registry").(marketplace.Registry),
				ctn.Get("listing.repo").(repository.ListingRepository),
				ctn.Get("custodian.directory").(*custodian.Directory),
				ctn.Get("ledger").(*ledger.Bank),
			), nil
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("registry").(marketplace.Registry),
				ctn.Get("custodian.directory").(*custodian.Directory),
				ctn.Get("api.server").(api.Server),
			), nil
		},
	},
}
