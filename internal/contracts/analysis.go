package contracts

// Action represents the recommended action for a sector
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Rank orders actions for display: buy < sell < hold
func (a Action) Rank() int {
	switch a {
	case ActionBuy:
		return 0
	case ActionSell:
		return 1
	default:
		return 2
	}
}

// SectorAllocation is the actual vs target weight of one sector
type SectorAllocation struct {
	Sector           Sector  `json:"sector"`
	SectorName       string  `json:"sectorName"`
	Value            float64 `json:"value"`      // KRW
	Percentage       float64 `json:"percentage"` // 0 ~ 100
	TargetPercentage float64 `json:"targetPercentage"`
	Color            string  `json:"color"`
}

// RebalanceRecommendation is the suggested trade for one sector
type RebalanceRecommendation struct {
	Sector            Sector  `json:"sector"`
	SectorName        string  `json:"sectorName"`
	CurrentWeight     float64 `json:"currentWeight"`
	TargetWeight      float64 `json:"targetWeight"`
	Action            Action  `json:"action"`
	RecommendedAmount float64 `json:"recommendedAmount"` // KRW, 매도는 음수
}

// PortfolioSummary holds portfolio-level totals in KRW
type PortfolioSummary struct {
	TotalValue         float64 `json:"totalValue"`
	TotalReturn        float64 `json:"totalReturn"`
	TotalReturnPercent float64 `json:"totalReturnPercent"`
	DayChange          float64 `json:"dayChange"`        // 항상 0 (일간 데이터 없음)
	DayChangePercent   float64 `json:"dayChangePercent"` // 항상 0
}

// Analysis bundles the three engine outputs
type Analysis struct {
	Allocations     []SectorAllocation        `json:"allocations"`
	Recommendations []RebalanceRecommendation `json:"recommendations"`
	Summary         PortfolioSummary          `json:"summary"`
}
