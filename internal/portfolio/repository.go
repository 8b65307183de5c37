package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// ErrNotFound is returned when a portfolio does not exist
var ErrNotFound = errors.New("portfolio not found")

const dateLayout = "2006-01-02"

// Repository handles portfolio data persistence
// ⭐ SSOT: Portfolio 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new portfolio repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS portfolios (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		user_id TEXT NOT NULL DEFAULT 'anonymous',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS etf_holdings (
		id UUID PRIMARY KEY,
		portfolio_id UUID REFERENCES portfolios(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		shares DECIMAL(15, 6) NOT NULL,
		current_price DECIMAL(15, 6) NOT NULL,
		purchase_price DECIMAL(15, 6) NOT NULL,
		purchase_date DATE,
		sector TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,
	// 같은 트랜잭션에서 넣은 행은 created_at이 같으므로 입력 순서를 별도 보관
	`ALTER TABLE etf_holdings ADD COLUMN IF NOT EXISTS position INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_etf_holdings_portfolio_id ON etf_holdings(portfolio_id)`,
}

// EnsureSchema creates tables and indexes when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Create saves a portfolio with its holdings and returns the generated id
func (r *Repository) Create(ctx context.Context, p *contracts.Portfolio) (string, error) {
	id := uuid.NewString()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO portfolios (id, name, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, id, p.Name, nullableText(p.Description), p.OwnerOrDefault())
	if err != nil {
		return "", fmt.Errorf("failed to insert portfolio: %w", err)
	}

	if err := insertHoldings(ctx, tx, id, p.Holdings); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// Get retrieves a portfolio with holdings in insertion order
func (r *Repository) Get(ctx context.Context, id string) (*contracts.Portfolio, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	p, err := scanPortfolio(r.pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(description, ''), user_id, created_at, updated_at
		FROM portfolios
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	holdings, err := r.holdingsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if h, ok := holdings[id]; ok {
		p.Holdings = h
	}

	return p, nil
}

// List returns a user's portfolios (with holdings), most recently updated first
func (r *Repository) List(ctx context.Context, userID string) ([]contracts.Portfolio, error) {
	if userID == "" {
		userID = contracts.DefaultUserID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(description, ''), user_id, created_at, updated_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := make([]contracts.Portfolio, 0)
	ids := make([]string, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(ids) == 0 {
		return portfolios, nil
	}

	holdings, err := r.holdingsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range portfolios {
		if h, ok := holdings[portfolios[i].ID]; ok {
			portfolios[i].Holdings = h
		}
	}

	return portfolios, nil
}

// Update replaces name, description and all holdings of a portfolio
func (r *Repository) Update(ctx context.Context, id string, p *contracts.Portfolio) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE portfolios
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
	`, id, p.Name, nullableText(p.Description))
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, "DELETE FROM etf_holdings WHERE portfolio_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete old holdings: %w", err)
	}

	if err := insertHoldings(ctx, tx, id, p.Holdings); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a portfolio; holdings are removed by cascade
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM portfolios WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func insertHoldings(ctx context.Context, tx pgx.Tx, portfolioID string, holdings []contracts.Holding) error {
	query := `
		INSERT INTO etf_holdings (
			id, portfolio_id, symbol, name, shares, current_price, purchase_price,
			purchase_date, sector, currency, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i, h := range holdings {
		purchaseDate, err := parseDate(h.PurchaseDate)
		if err != nil {
			return fmt.Errorf("holding %s: %w", h.Symbol, err)
		}

		_, err = tx.Exec(ctx, query,
			uuid.NewString(), portfolioID, h.Symbol, h.Name, h.Shares, h.CurrentPrice, h.PurchasePrice,
			purchaseDate, string(h.Sector), h.CurrencyCode(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}

	return nil
}

// holdingsFor loads holdings of the given portfolios keyed by portfolio id
func (r *Repository) holdingsFor(ctx context.Context, portfolioIDs []string) (map[string][]contracts.Holding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT portfolio_id::text, id::text, symbol, name, shares::float8, current_price::float8,
			purchase_price::float8, purchase_date, sector, currency
		FROM etf_holdings
		WHERE portfolio_id = ANY($1::uuid[])
		ORDER BY portfolio_id, position, created_at
	`, portfolioIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]contracts.Holding, len(portfolioIDs))
	for rows.Next() {
		var (
			portfolioID  string
			h            contracts.Holding
			purchaseDate *time.Time
			sector       string
		)
		err := rows.Scan(&portfolioID, &h.ID, &h.Symbol, &h.Name, &h.Shares, &h.CurrentPrice,
			&h.PurchasePrice, &purchaseDate, &sector, &h.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.Sector = contracts.Sector(sector)
		if purchaseDate != nil {
			h.PurchaseDate = purchaseDate.Format(dateLayout)
		}
		result[portfolioID] = append(result[portfolioID], h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func scanPortfolio(row pgx.Row) (*contracts.Portfolio, error) {
	var p contracts.Portfolio
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Holdings = []contracts.Holding{}
	return &p, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase date %q: %w", s, err)
	}
	return &d, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
