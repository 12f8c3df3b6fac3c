package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const merchantColumns = `merchant_id, merchant_code, name, category, contact_phone, description,
		total_transactions, rating, featured, logo, created_at`

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// List fetches merchants matching params, busiest first.
func (r *MerchantRepo) List(ctx context.Context, params ports.MerchantListParams) ([]domain.Merchant, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *params.Category)
		argIdx++
	}
	if params.Search != nil {
		conditions = append(conditions, fmt.Sprintf("name LIKE $%d", argIdx))
		args = append(args, "%"+*params.Search+"%")
		argIdx++
	}
	if params.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIdx))
		args = append(args, *params.Featured)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM merchants %s ORDER BY total_transactions DESC LIMIT $%d`,
		merchantColumns, where, argIdx)
	args = append(args, params.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	merchants := []domain.Merchant{}
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

// GetByID fetches a merchant by its numeric ID.
func (r *MerchantRepo) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE merchant_id = $1`

	m, err := scanMerchant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return m, nil
}

// IncrementTransactions bumps the merchant's transaction counter within a
// database transaction.
func (r *MerchantRepo) IncrementTransactions(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `UPDATE merchants SET total_transactions = total_transactions + 1 WHERE merchant_id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment merchant transactions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMerchantNotFound
	}
	return nil
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(
		&m.MerchantID, &m.MerchantCode, &m.Name, &m.Category, &m.ContactPhone, &m.Description,
		&m.TotalTransactions, &m.Rating, &m.Featured, &m.Logo, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
