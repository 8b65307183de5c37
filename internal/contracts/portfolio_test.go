package contracts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSectors_Order(t *testing.T) {
	want := []Sector{SectorGrowth, SectorDividend, SectorBond, SectorGold, SectorCrypto}
	assert.Equal(t, want, AllSectors())

	// 반환된 슬라이스를 수정해도 내부 순서는 유지
	s := AllSectors()
	s[0] = SectorCrypto
	assert.Equal(t, SectorGrowth, AllSectors()[0])
}

func TestSector_DisplayNameAndColor(t *testing.T) {
	assert.Equal(t, "성장주 ETF", SectorGrowth.DisplayName())
	assert.Equal(t, "비트코인", SectorCrypto.DisplayName())
	assert.Equal(t, "#3B82F6", SectorGrowth.Color())
	assert.Equal(t, "#8B5CF6", SectorCrypto.Color())
	assert.Equal(t, "real_estate", Sector("real_estate").DisplayName())
}

func TestParseSector(t *testing.T) {
	s, err := ParseSector(" Dividend ")
	require.NoError(t, err)
	assert.Equal(t, SectorDividend, s)

	_, err = ParseSector("reit")
	assert.Error(t, err)
}

func TestHolding_CurrencyCode(t *testing.T) {
	assert.Equal(t, "USD", Holding{}.CurrencyCode())
	assert.Equal(t, "KRW", Holding{Currency: "krw"}.CurrencyCode())
	assert.Equal(t, "EUR", Holding{Currency: " EUR "}.CurrencyCode())
}

func TestHolding_Values(t *testing.T) {
	h := Holding{Shares: 10, CurrentPrice: 100, PurchasePrice: 80}
	assert.Equal(t, 1000.0, h.MarketValue())
	assert.Equal(t, 800.0, h.CostBasis())
}

func TestFilterValid(t *testing.T) {
	holdings := []Holding{
		{Symbol: "SPY", Shares: 1, CurrentPrice: 500, PurchasePrice: 450, Sector: SectorGrowth},
		{Symbol: "", Shares: 1, CurrentPrice: 500, PurchasePrice: 450, Sector: SectorGrowth},
		{Symbol: "GLD", Shares: -1, CurrentPrice: 200, PurchasePrice: 180, Sector: SectorGold},
		{Symbol: "XYZ", Shares: 1, CurrentPrice: 10, PurchasePrice: 10, Sector: "reit"},
		{Symbol: "BND", Shares: 1, CurrentPrice: math.NaN(), PurchasePrice: 70, Sector: SectorBond},
		{Symbol: "SCHD", Shares: 10, PurchasePrice: 100, Sector: SectorDividend},
		{Symbol: "TLT", Shares: 0, CurrentPrice: 90, PurchasePrice: 100, Sector: SectorBond},
		{Symbol: "IAU", Shares: 2, CurrentPrice: 40, Sector: SectorGold},
		{Symbol: "069500", Shares: 3, CurrentPrice: 35000, PurchasePrice: 33000, Sector: SectorDividend, Currency: "KRW"},
	}

	valid := FilterValid(holdings)
	require.Len(t, valid, 2)
	assert.Equal(t, "SPY", valid[0].Symbol)
	assert.Equal(t, "069500", valid[1].Symbol)
}

func TestHolding_IsValid_PartialInput(t *testing.T) {
	complete := Holding{Symbol: "QQQ", Shares: 10, CurrentPrice: 100, PurchasePrice: 90, Sector: SectorGrowth}
	require.True(t, complete.IsValid())

	tests := []struct {
		name   string
		mutate func(*Holding)
	}{
		{"missing current price", func(h *Holding) { h.CurrentPrice = 0 }},
		{"missing shares", func(h *Holding) { h.Shares = 0 }},
		{"missing purchase price", func(h *Holding) { h.PurchasePrice = 0 }},
		{"infinite price", func(h *Holding) { h.CurrentPrice = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := complete
			tt.mutate(&h)
			assert.False(t, h.IsValid())
		})
	}
}

func TestAction_Rank(t *testing.T) {
	assert.Less(t, ActionBuy.Rank(), ActionSell.Rank())
	assert.Less(t, ActionSell.Rank(), ActionHold.Rank())
}

func TestPortfolio_GetHolding(t *testing.T) {
	p := &Portfolio{
		Holdings: []Holding{
			{Symbol: "SPY", Name: "SPDR S&P 500"},
			{Symbol: "GLD", Name: "SPDR Gold Shares"},
		},
	}

	h, ok := p.GetHolding("GLD")
	require.True(t, ok)
	assert.Equal(t, "SPDR Gold Shares", h.Name)

	_, ok = p.GetHolding("QQQ")
	assert.False(t, ok)
	assert.Equal(t, 2, p.Count())
	assert.Equal(t, DefaultUserID, p.OwnerOrDefault())
}

func TestHolding_JSONFieldNames(t *testing.T) {
	raw := `{"symbol":"SPY","name":"SPDR","shares":2,"currentPrice":500,"purchasePrice":450,"purchaseDate":"2024-01-02","sector":"growth"}`

	var h Holding
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	assert.Equal(t, 500.0, h.CurrentPrice)
	assert.Equal(t, 450.0, h.PurchasePrice)
	assert.Equal(t, "2024-01-02", h.PurchaseDate)
	assert.Equal(t, SectorGrowth, h.Sector)
	assert.Equal(t, "USD", h.CurrencyCode())
}

func TestStockInfo_NilPriceSerializesAsNull(t *testing.T) {
	info := StockInfo{Symbol: "SPY", Name: "SPDR", Currency: "USD"}
	assert.False(t, info.HasPrice())

	b, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"current_price":null`)
}
