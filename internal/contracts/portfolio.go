package contracts

import "time"

// DefaultUserID is used when no user is given (no authentication)
const DefaultUserID = "anonymous"

// Portfolio is a named, persisted set of holdings
// ⭐ SSOT: 저장소 ↔ API 간 포트폴리오 전달 형식
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Holdings    []Holding `json:"etf_holdings"`
}

// Count returns the number of holdings
func (p *Portfolio) Count() int {
	return len(p.Holdings)
}

// GetHolding finds a holding by symbol
func (p *Portfolio) GetHolding(symbol string) (*Holding, bool) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i], true
		}
	}
	return nil, false
}

// OwnerOrDefault returns the user id, DefaultUserID when empty
func (p *Portfolio) OwnerOrDefault() string {
	if p.UserID == "" {
		return DefaultUserID
	}
	return p.UserID
}
