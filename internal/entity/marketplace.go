package entity

type ListingCreated struct {
	Seller   string `json:"seller"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    string `json:"price"`
}

type ListingPriceChanged struct {
	Seller   string `json:"seller"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    string `json:"price"`
}

type ListingRemoved struct {
	Seller   string `json:"seller"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
}

type ListingSold struct {
	Seller   string `json:"seller"`
	Buyer    string `json:"buyer"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    string `json:"price"`
}

type FeePercentageChanged struct {
	Previous uint `json:"previous"`
	Current  uint `json:"current"`
}
