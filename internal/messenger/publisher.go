package messenger

import (
	"encoding/json"

	"github.com/mintbay/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// Publisher forwards marketplace events onto the message broker so external
// consumers get the same append-only log the contract would emit.
type Publisher interface {
	OnListingCreated(msg interface{})
	OnListingPriceChanged(msg interface{})
	OnListingRemoved(msg interface{})
	OnListingSold(msg interface{})
	OnFeePercentageChanged(msg interface{})
}

type publisher struct {
	messenger MessageService
}

func NewPublisher(messenger MessageService) Publisher {
	return publisher{messenger}
}

func (p publisher) OnListingCreated(msg interface{}) {
	if ev, ok := msg.(entity.ListingCreated); ok {
		p.publish(ListingCreated, ev)
	}
}

func (p publisher) OnListingPriceChanged(msg interface{}) {
	if ev, ok := msg.(entity.ListingPriceChanged); ok {
		p.publish(ListingPriceChanged, ev)
	}
}

func (p publisher) OnListingRemoved(msg interface{}) {
	if ev, ok := msg.(entity.ListingRemoved); ok {
		p.publish(ListingRemoved, ev)
	}
}

func (p publisher) OnListingSold(msg interface{}) {
	if ev, ok := msg.(entity.ListingSold); ok {
		p.publish(ListingSold, ev)
	}
}

func (p publisher) OnFeePercentageChanged(msg interface{}) {
	if ev, ok := msg.(entity.FeePercentageChanged); ok {
		p.publish(FeeChanged, ev)
	}
}

func (p publisher) publish(item Item, ev interface{}) {
	body, err := json.Marshal(ev)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Publisher: Failed to marshal event")
		return
	}

	if err := p.messenger.SendMessage(item, body, false); err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Publisher: Failed to publish event")
	}
}
