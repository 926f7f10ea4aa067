package core

import (
	"fmt"
	"strings"
)

const noOfferTemplate = "We currently carry the brand %s, but we do not have any active offers. " +
	"Please stay tuned for future updates, as we'll continually strive to bring you exciting deals."

// NoOfferSentence returns the text shown for a brand that has no active offer.
func NoOfferSentence(brand string) string {
	return fmt.Sprintf(noOfferTemplate, brand)
}

// FillOffer replaces a missing or blank Offer with the no-offer sentence for
// the row's brand and records whether a genuine offer was present.
func FillOffer(o *Offer) {
	if strings.TrimSpace(o.Offer) == "" {
		o.Offer = NoOfferSentence(o.Brand)
		o.HasOffer = false
		return
	}
	o.HasOffer = !IsNoOffer(o)
}

// IsNoOffer reports whether the offer text carries the no-offer sentence for
// the row's brand. Such rows never score on offer text.
func IsNoOffer(o *Offer) bool {
	return strings.Contains(o.Offer, NoOfferSentence(o.Brand))
}
