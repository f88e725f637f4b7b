package elastic_search

import (
	"github.com/mintbay/nft-marketplace/internal/entity"
)

func mergeRequests(index string, cached Request, action RequestAction, e entity.Entity) entity.Entity {
	switch {
	case index == ListingIndex.Get():
		result := cached.Entity.(entity.Listing)

		if action == ListingPriceChange {
			result.Price = e.(entity.Listing).Price
		}

		if action == ListingSale {
			result.Active = e.(entity.Listing).Active
		}

		if action == ListingCreate {
			result = e.(entity.Listing)
		}

		return result
	}

	return e
}
