package event

type Type string

const (
	ListingCreatedEvent       Type = "ListingCreatedEvent"
	ListingPriceChangedEvent  Type = "ListingPriceChangedEvent"
	ListingRemovedEvent       Type = "ListingRemovedEvent"
	ListingSoldEvent          Type = "ListingSoldEvent"
	FeePercentageChangedEvent Type = "FeePercentageChangedEvent"
)
