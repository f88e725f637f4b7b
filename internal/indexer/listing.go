package indexer

import (
	"errors"

	"github.com/mintbay/nft-marketplace/internal/dev"
	"github.com/mintbay/nft-marketplace/internal/elastic_search"
	"github.com/mintbay/nft-marketplace/internal/entity"
	"github.com/mintbay/nft-marketplace/internal/factory"
	"go.uber.org/zap"
)

// ListingIndexer projects marketplace events into the listing read model.
// It never feeds back into the registry; the index only serves queries.
type ListingIndexer interface {
	OnListingCreated(msg interface{})
	OnListingPriceChanged(msg interface{})
	OnListingRemoved(msg interface{})
	OnListingSold(msg interface{})
}

type listingIndexer struct {
	elastic elastic_search.Index
}

func NewListingIndexer(elastic elastic_search.Index) ListingIndexer {
	return listingIndexer{elastic}
}

func (i listingIndexer) OnListingCreated(msg interface{}) {
	created, ok := msg.(entity.ListingCreated)
	if !ok {
		i.badPayload("OnListingCreated", msg)
		return
	}

	zap.L().With(
		zap.String("contract", created.Contract),
		zap.Uint64("tokenId", created.TokenId),
	).Info("ListingIndexer: Index listing")

	i.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), factory.CreateListing(created), elastic_search.ListingCreate)
	i.elastic.Persist()
}

func (i listingIndexer) OnListingPriceChanged(msg interface{}) {
	change, ok := msg.(entity.ListingPriceChanged)
	if !ok {
		i.badPayload("OnListingPriceChanged", msg)
		return
	}

	zap.L().With(
		zap.String("contract", change.Contract),
		zap.Uint64("tokenId", change.TokenId),
		zap.String("price", change.Price),
	).Info("ListingIndexer: Update listing price")

	i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), factory.CreateListingFromPriceChange(change), elastic_search.ListingPriceChange)
	i.elastic.Persist()
}

func (i listingIndexer) OnListingRemoved(msg interface{}) {
	removed, ok := msg.(entity.ListingRemoved)
	if !ok {
		i.badPayload("OnListingRemoved", msg)
		return
	}

	zap.L().With(
		zap.String("contract", removed.Contract),
		zap.Uint64("tokenId", removed.TokenId),
	).Info("ListingIndexer: Delete listing")

	i.elastic.AddDeleteRequest(elastic_search.ListingIndex.Get(), factory.CreateListingFromRemoval(removed), elastic_search.ListingDelete)
	i.elastic.Persist()
}

func (i listingIndexer) OnListingSold(msg interface{}) {
	sale, ok := msg.(entity.ListingSold)
	if !ok {
		i.badPayload("OnListingSold", msg)
		return
	}

	zap.L().With(
		zap.String("contract", sale.Contract),
		zap.Uint64("tokenId", sale.TokenId),
		zap.String("buyer", sale.Buyer),
	).Info("ListingIndexer: Deactivate listing")

	i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), factory.CreateListingFromSale(sale), elastic_search.ListingSale)
	i.elastic.Persist()
}

func (i listingIndexer) badPayload(name string, msg interface{}) {
	zap.L().With(zap.String("handler", name)).Error("ListingIndexer: Unexpected event payload")

	i.elastic.Save(elastic_search.ErrorIndex.Get(), dev.NewError("indexer", name, errors.New("unexpected event payload"), map[string]interface{}{
		"payload": msg,
	}))
}
