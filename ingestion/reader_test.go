package ingestion

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/poiesic/offersearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r io.Reader) []*core.Offer {
	t.Helper()
	reader, err := NewReader(r)
	require.NoError(t, err)

	var offers []*core.Offer
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		offer, err := reader.Offer(rec)
		require.NoError(t, err)
		offers = append(offers, offer)
	}
	return offers
}

func TestReader_PlainAndCompressedAgree(t *testing.T) {
	plain, err := os.Open("testdata/offers.csv")
	require.NoError(t, err)
	defer plain.Close()

	compressed, err := os.Open("testdata/offers.csv.bz2")
	require.NoError(t, err)
	defer compressed.Close()

	a := readAll(t, plain)
	b := readAll(t, compressed)
	require.Len(t, a, 3)
	assert.Equal(t, a, b)

	assert.Equal(t, "SAMS CLUB", a[0].Retailer)
	assert.Equal(t, 1234.0, a[0].Receipts)
	assert.True(t, a[0].HasOffer)

	assert.Equal(t, "Beyond Meat® Plant-Based products, spend $25", a[1].Offer)
	assert.Empty(t, a[1].Retailer)

	assert.Equal(t, core.NoOfferSentence("ACME"), a[2].Offer)
	assert.False(t, a[2].HasOffer)
}

func TestReader_HeaderHandling(t *testing.T) {
	input := "\ufeffreceipts, Brand ,OFFER,EXTRA,retailer,BRAND_BELONGS_TO_CATEGORY\n" +
		"3.5,Acme,10% off,x,Walmart,Snacks\n"

	offers := readAll(t, strings.NewReader(input))
	require.Len(t, offers, 1)
	assert.Equal(t, &core.Offer{
		Offer:    "10% off",
		Brand:    "Acme",
		Retailer: "Walmart",
		Category: "Snacks",
		Receipts: 3.5,
		HasOffer: true,
	}, offers[0])
}

func TestReader_MissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
	}{
		{"no receipts", "OFFER,RETAILER,BRAND,BRAND_BELONGS_TO_CATEGORY\n", ColumnReceipts},
		{"no category", "OFFER,RETAILER,BRAND,RECEIPTS\n", ColumnCategory},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMissingColumn)
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}

func TestReader_Receipts(t *testing.T) {
	header := "OFFER,RETAILER,BRAND,BRAND_BELONGS_TO_CATEGORY,RECEIPTS\n"

	tests := []struct {
		name    string
		row     string
		want    float64
		wantErr error
	}{
		{"integer", "a,b,c,d,12\n", 12, nil},
		{"fraction", "a,b,c,d,0.25\n", 0.25, nil},
		{"blank reads as zero", "a,b,c,d,  \n", 0, nil},
		{"short row reads as zero", "a,b,c\n", 0, nil},
		{"not a number", "a,b,c,d,lots\n", 0, ErrInvalidReceipts},
		{"negative", "a,b,c,d,-1\n", 0, core.ErrNegativeReceipts},
		{"NaN", "a,b,c,d,NaN\n", 0, core.ErrNonFiniteReceipts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewReader(strings.NewReader(header + tt.row))
			require.NoError(t, err)
			rec, err := reader.Read()
			require.NoError(t, err)

			offer, err := reader.Offer(rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "line 2")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, offer.Receipts)
		})
	}
}
