package marketplace

import (
	"math/big"
)

type Listing struct {
	Seller  string
	TokenId uint64
	Price   *big.Int
	Active  bool
}

type ListingKey struct {
	Contract string
	TokenId  uint64
}

// ListingStore is the registry owned two-level mapping of
// (collection, tokenId) to Listing. Absent keys read back as the zero
// Listing, matching a deleted entry; callers tell the two apart only by
// the zero seller and the false active flag. Not safe for concurrent use,
// the registry serializes access.
type ListingStore struct {
	listings map[ListingKey]Listing
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[ListingKey]Listing)}
}

func (s *ListingStore) Get(contract string, tokenId uint64) Listing {
	return s.listings[ListingKey{contract, tokenId}]
}

func (s *ListingStore) Put(contract string, tokenId uint64, listing Listing) {
	s.listings[ListingKey{contract, tokenId}] = listing
}

func (s *ListingStore) Delete(contract string, tokenId uint64) {
	delete(s.listings, ListingKey{contract, tokenId})
}
