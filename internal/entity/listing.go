package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type Listing struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Seller   string `json:"seller"`
	Price    string `json:"price"`
	Active   bool   `json:"active"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.TokenId, l.Contract)
}

func CreateListingSlug(tokenId uint64, contract string) string {
	return slug.Make(fmt.Sprintf("listing-%d-%s", tokenId, contract))
}
