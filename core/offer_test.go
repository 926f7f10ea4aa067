package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOfferSentence(t *testing.T) {
	assert.Equal(t,
		"We currently carry the brand Acme, but we do not have any active offers. "+
			"Please stay tuned for future updates, as we'll continually strive to bring you exciting deals.",
		NoOfferSentence("Acme"))
}

func TestFillOffer(t *testing.T) {
	t.Run("missing offer gets canned sentence", func(t *testing.T) {
		o := &Offer{Brand: "Acme"}
		FillOffer(o)
		assert.Equal(t, NoOfferSentence("Acme"), o.Offer)
		assert.False(t, o.HasOffer)
		assert.True(t, IsNoOffer(o))
	})

	t.Run("blank offer gets canned sentence", func(t *testing.T) {
		o := &Offer{Brand: "Acme", Offer: "   "}
		FillOffer(o)
		assert.Equal(t, NoOfferSentence("Acme"), o.Offer)
		assert.False(t, o.HasOffer)
	})

	t.Run("missing brand", func(t *testing.T) {
		o := &Offer{}
		FillOffer(o)
		assert.Equal(t, NoOfferSentence(""), o.Offer)
		assert.True(t, IsNoOffer(o))
	})

	t.Run("genuine offer is kept", func(t *testing.T) {
		o := &Offer{Brand: "Acme", Offer: "10% off Acme snacks"}
		FillOffer(o)
		assert.Equal(t, "10% off Acme snacks", o.Offer)
		assert.True(t, o.HasOffer)
		assert.False(t, IsNoOffer(o))
	})

	t.Run("pre-filled sentence is recognized", func(t *testing.T) {
		o := &Offer{Brand: "Acme", Offer: NoOfferSentence("Acme")}
		FillOffer(o)
		assert.False(t, o.HasOffer)
	})

	t.Run("sentence for another brand is a genuine offer", func(t *testing.T) {
		o := &Offer{Brand: "Acme", Offer: NoOfferSentence("Globex")}
		FillOffer(o)
		assert.True(t, o.HasOffer)
	})
}
