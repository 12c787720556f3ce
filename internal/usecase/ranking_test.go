package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

func makeOffer(company string, price int64, delivery domain.DeliveryTime, weight domain.Weight) domain.ShippingOffer {
	o, err := domain.NewShippingOffer(company, decimal.NewFromInt(price), delivery, "Standard", "До дверей", weight, nil)
	if err != nil {
		panic(err)
	}
	return o
}

func companies(offers []domain.ShippingOffer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.Company
	}
	return out
}

func TestSortOffers(t *testing.T) {
	offers := []domain.ShippingOffer{
		makeOffer("A", 500, domain.DeliveryDays(2), 1),
		makeOffer("B", 300, domain.DeliveryOnRequest(), 1),
		makeOffer("C", 300, domain.DeliveryDays(4), 1),
		makeOffer("D", 700, domain.DeliveryDays(1), 1),
		makeOffer("E", 300, domain.DeliveryDays(4), 1),
	}

	tests := []struct {
		name string
		by   SortOption
		want []string
	}{
		{
			name: "price with delivery tie-break",
			by:   SortByPrice,
			want: []string{"C", "E", "B", "A", "D"},
		},
		{
			name: "empty option sorts by price",
			by:   "",
			want: []string{"C", "E", "B", "A", "D"},
		},
		{
			name: "delivery with price tie-break",
			by:   SortByDelivery,
			want: []string{"D", "A", "C", "E", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortOffers(offers, tt.by)
			assert.Equal(t, tt.want, companies(got))
		})
	}
}

func TestSortOffers_DoesNotMutateInput(t *testing.T) {
	offers := []domain.ShippingOffer{
		makeOffer("A", 500, domain.DeliveryDays(2), 1),
		makeOffer("B", 100, domain.DeliveryDays(2), 1),
	}

	sorted := SortOffers(offers, SortByPrice)

	assert.Equal(t, []string{"A", "B"}, companies(offers))
	assert.Equal(t, []string{"B", "A"}, companies(sorted))
}

func TestSortOffers_Empty(t *testing.T) {
	assert.Empty(t, SortOffers(nil, SortByPrice))
	assert.NotNil(t, SortOffers(nil, SortByPrice))
}

func TestSortOffers_FirstIsCheapest(t *testing.T) {
	offers := []domain.ShippingOffer{
		makeOffer("A", 900, domain.DeliveryDays(3), 5),
		makeOffer("B", 450, domain.DeliveryDays(6), 5),
		makeOffer("C", 450, domain.DeliveryDays(5), 5),
	}

	sorted := SortOffers(offers, SortByPrice)
	cheapest := domain.CheapestOffer(offers)

	require.NotNil(t, cheapest)
	assert.Equal(t, cheapest.Company, sorted[0].Company)
}

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		input   string
		want    SortOption
		wantErr bool
	}{
		{input: "", want: SortByPrice},
		{input: "price", want: SortByPrice},
		{input: "delivery", want: SortByDelivery},
		{input: "best", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortOption(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
