package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "acme"},
		{name: "empty string", content: ""},
		{name: "long content", content: "10% off Acme snacks at every participating retailer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestField_Value(t *testing.T) {
	o := &Offer{Offer: "o", Retailer: "r", Brand: "b", Category: "c"}
	assert.Equal(t, "o", FieldOffer.Value(o))
	assert.Equal(t, "r", FieldRetailer.Value(o))
	assert.Equal(t, "b", FieldBrand.Value(o))
	assert.Equal(t, "c", FieldCategory.Value(o))
	assert.Equal(t, "BRAND_BELONGS_TO_CATEGORY", FieldCategory.String())
}

func TestDimension_Field(t *testing.T) {
	assert.Equal(t, FieldRetailer, DimensionRetailer.Field())
	assert.Equal(t, FieldBrand, DimensionBrand.Field())
	assert.Equal(t, FieldCategory, DimensionCategory.Field())
	assert.Equal(t, []Dimension{DimensionRetailer, DimensionBrand, DimensionCategory}, Dimensions[:])
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "category", TierCategory.String())
	assert.Equal(t, "retailer", TierRetailer.String())
	assert.Equal(t, "brand", TierBrand.String())
	assert.Equal(t, "fallback", TierFallback.String())
	assert.Equal(t, "unknown", Tier(0).String())
}

func TestOfferMUS(t *testing.T) {
	offer := Offer{
		Id:       42,
		Offer:    "Spend $50 at Walmart",
		Brand:    "Acme",
		Retailer: "WALMART",
		Category: "Snacks",
		Receipts: 1234.5,
		HasOffer: true,
	}

	buf := make([]byte, OfferMUS.Size(offer))
	n := OfferMUS.Marshal(offer, buf)
	assert.Equal(t, len(buf), n)

	decoded, read, err := OfferMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, offer, decoded)
}

func TestOfferMUS_Truncated(t *testing.T) {
	offer := Offer{Id: 1, Offer: "x", Brand: "y"}
	buf := make([]byte, OfferMUS.Size(offer))
	OfferMUS.Marshal(offer, buf)

	_, _, err := OfferMUS.Unmarshal(buf[:len(buf)-3])
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := []*Offer{
		{Offer: "10% off", Brand: "Acme", Receipts: 2},
		{Offer: "free bag", Brand: "Globex", Receipts: 0.5},
	}
	sum := func(offers []*Offer) ID {
		fp := NewFingerprint()
		for _, o := range offers {
			fp.Add(o)
		}
		return fp.Sum()
	}

	assert.Equal(t, sum(a), sum(a))
	assert.NotEqual(t, sum(a), sum([]*Offer{a[1], a[0]}), "row order is part of the fingerprint")

	withID := []*Offer{{Id: 9, Offer: "10% off", Brand: "Acme", Receipts: 2}, a[1]}
	assert.Equal(t, sum(a), sum(withID), "IDs are ignored")

	// Field boundaries are delimited, so shifting text between fields changes the hash.
	shifted := []*Offer{{Offer: "10% offAcme", Receipts: 2}, a[1]}
	assert.NotEqual(t, sum(a), sum(shifted))
}
