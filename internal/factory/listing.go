package factory

import (
	"github.com/mintbay/nft-marketplace/internal/entity"
)

func CreateListing(created entity.ListingCreated) entity.Listing {
	return entity.Listing{
		Contract: created.Contract,
		TokenId:  created.TokenId,
		Seller:   created.Seller,
		Price:    created.Price,
		Active:   true,
	}
}

func CreateListingFromPriceChange(change entity.ListingPriceChanged) entity.Listing {
	return entity.Listing{
		Contract: change.Contract,
		TokenId:  change.TokenId,
		Seller:   change.Seller,
		Price:    change.Price,
		Active:   true,
	}
}

func CreateListingFromSale(sale entity.ListingSold) entity.Listing {
	return entity.Listing{
		Contract: sale.Contract,
		TokenId:  sale.TokenId,
		Seller:   sale.Seller,
		Price:    sale.Price,
		Active:   false,
	}
}

func CreateListingFromRemoval(removed entity.ListingRemoved) entity.Listing {
	return entity.Listing{
		Contract: removed.Contract,
		TokenId:  removed.TokenId,
		Seller:   removed.Seller,
	}
}
