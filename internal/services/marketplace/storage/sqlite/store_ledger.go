package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// AppendTransaction records one ledger movement. The log is append-only.
func (s *Store) AppendTransaction(ctx context.Context, tx storage.Transaction) error {
	if strings.TrimSpace(tx.ID) == "" {
		return fmt.Errorf("transaction id is required")
	}
	if strings.TrimSpace(tx.AccountID) == "" {
		return fmt.Errorf("transaction account id is required")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	var orderRef sql.NullString
	if tx.OrderRef != nil {
		orderRef = sql.NullString{String: *tx.OrderRef, Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO ledger_transactions (id, account_id, amount, type, description, order_ref, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		tx.ID,
		tx.AccountID,
		tx.Amount,
		tx.Type,
		tx.Description,
		orderRef,
		toMillis(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns one page of the transaction log plus the total
// count matching the filters.
//
// Rows join the owning account and user for display. Without an account-type
// filter the join is outer, so movements against deleted accounts still list
// with nil display fields. Filtering by account type switches to an inner
// join: the filter can only match rows whose account resolves.
func (s *Store) ListTransactions(ctx context.Context, query storage.TransactionQuery) (storage.TransactionPage, error) {
	join := "LEFT JOIN"
	var conditions []string
	var args []any

	if strings.TrimSpace(query.Type) != "" {
		conditions = append(conditions, "lt.type = ?")
		args = append(args, query.Type)
	}
	if strings.TrimSpace(query.AccountType) != "" {
		join = "JOIN"
		conditions = append(conditions, "la.account_type = ?")
		args = append(args, query.AccountType)
	}
	if query.Start != nil {
		conditions = append(conditions, "lt.created_at >= ?")
		args = append(args, toMillis(*query.Start))
	}
	if query.End != nil {
		conditions = append(conditions, "lt.created_at <= ?")
		args = append(args, toMillis(*query.End))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	fromClause := fmt.Sprintf(`
FROM ledger_transactions lt
%s ledger_accounts la ON la.id = lt.account_id
LEFT JOIN user_records ur ON ur.id = la.user_id
LEFT JOIN restaurant_profiles rp ON rp.user_id = la.user_id
%s`, join, where)

	var total int64
	countQuery := "SELECT COUNT(*)" + fromClause
	if err := s.sqlDB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return storage.TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	pageQuery := `
SELECT lt.id, lt.account_id, lt.amount, lt.type, lt.description, lt.order_ref, lt.created_at,
	la.account_type, ur.display_name, rp.name` +
		fromClause + `
ORDER BY lt.created_at DESC, lt.id DESC
LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), query.Limit, query.Offset)

	rows, err := s.sqlDB.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return storage.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []storage.Transaction
	for rows.Next() {
		var tx storage.Transaction
		var orderRef sql.NullString
		var createdAt int64
		var accountType sql.NullString
		var ownerName sql.NullString
		var restaurantName sql.NullString
		if err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.Amount,
			&tx.Type,
			&tx.Description,
			&orderRef,
			&createdAt,
			&accountType,
			&ownerName,
			&restaurantName,
		); err != nil {
			return storage.TransactionPage{}, fmt.Errorf("scan transaction: %w", err)
		}
		if orderRef.Valid {
			tx.OrderRef = &orderRef.String
		}
		tx.CreatedAt = fromMillis(createdAt)
		if accountType.Valid {
			tx.AccountType = &accountType.String
		}
		if ownerName.Valid {
			tx.OwnerName = &ownerName.String
		}
		if restaurantName.Valid {
			tx.RestaurantName = &restaurantName.String
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return storage.TransactionPage{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return storage.TransactionPage{Transactions: transactions, TotalCount: total}, nil
}

// AppendDiagnosticEvent persists one operational diagnostic.
func (s *Store) AppendDiagnosticEvent(ctx context.Context, event storage.DiagnosticEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	metadata := "{}"
	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("encode diagnostic metadata: %w", err)
		}
		metadata = string(encoded)
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO diagnostic_events (source, severity, message, metadata_json, created_at)
VALUES (?, ?, ?, ?, ?)
`,
		event.Source,
		event.Severity,
		event.Message,
		metadata,
		toMillis(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert diagnostic event: %w", err)
	}
	return nil
}
