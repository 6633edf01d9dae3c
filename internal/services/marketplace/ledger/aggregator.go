package ledger

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/mealgrid/mealgrid/internal/platform/errors"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
	"github.com/mealgrid/mealgrid/internal/telemetry"
)

const (
	// DefaultPageSize applies when a listing request omits a page size.
	DefaultPageSize = 20

	diagnosticSource = "ledger"
)

// Account type tags recognized by the balance rollup. Platform revenue and
// payables fold into a single platform bucket.
const (
	AccountTypeRestaurant       = "restaurant"
	AccountTypeDeliveryAgent    = "delivery_agent"
	AccountTypeClient           = "client"
	AccountTypePlatform         = "platform"
	AccountTypePlatformRevenue  = "platform_revenue"
	AccountTypePlatformPayables = "platform_payables"
)

// ErrFetchFailed is returned when the transaction log cannot be read.
var ErrFetchFailed = apperrors.New(apperrors.CodeLedgerFetchFailed, "failed to fetch transactions")

// Summary holds per-category balance rollups.
type Summary struct {
	Restaurants    Amount
	DeliveryAgents Amount
	Clients        Amount
	Platform       Amount
}

// Total sums every bucket. In a balanced double-entry ledger this is zero;
// the aggregator treats a drift as a monitoring signal, not a hard failure.
func (s Summary) Total() Amount {
	return s.Restaurants + s.DeliveryAgents + s.Clients + s.Platform
}

// ListQuery describes one transaction listing request.
type ListQuery struct {
	Page     int
	PageSize int

	Type        string
	AccountType string
	Start       *time.Time
	End         *time.Time
}

// Page is one page of transactions plus derived pagination totals.
type Page struct {
	Transactions []storage.Transaction
	Page         int
	PageSize     int
	TotalCount   int64
	TotalPages   int64
}

// Aggregator produces read-side financial summaries. It never mutates ledger
// state.
type Aggregator struct {
	accounts     storage.AccountStore
	transactions storage.TransactionStore
	diagnostics  *telemetry.Emitter
	tracer       trace.Tracer
}

// NewAggregator builds an aggregator over the given read stores.
func NewAggregator(accounts storage.AccountStore, transactions storage.TransactionStore, diagnostics *telemetry.Emitter) *Aggregator {
	return &Aggregator{
		accounts:     accounts,
		transactions: transactions,
		diagnostics:  diagnostics,
		tracer:       otel.Tracer("mealgrid/marketplace/ledger"),
	}
}

// BalanceSummary buckets every ledger account balance by category.
//
// Unrecognized account types are skipped, and unreadable balances count as
// zero. A read failure degrades to an all-zero summary after recording a
// diagnostic; dashboards render zeros instead of an error page.
func (a *Aggregator) BalanceSummary(ctx context.Context) Summary {
	if a == nil || a.accounts == nil {
		return Summary{}
	}

	ctx, span := a.tracer.Start(ctx, "ledger.balance_summary")
	defer span.End()

	accounts, err := a.accounts.ListLedgerAccounts(ctx)
	if err != nil {
		span.RecordError(err)
		_ = a.diagnostics.Emit(ctx, telemetry.SeverityError, diagnosticSource,
			"list ledger accounts failed", map[string]string{"error": err.Error()})
		return Summary{}
	}

	var summary Summary
	for _, account := range accounts {
		balance := CoerceAmount(account.Balance)
		switch strings.TrimSpace(account.AccountType) {
		case AccountTypeRestaurant:
			summary.Restaurants += balance
		case AccountTypeDeliveryAgent:
			summary.DeliveryAgents += balance
		case AccountTypeClient:
			summary.Clients += balance
		case AccountTypePlatform, AccountTypePlatformRevenue, AccountTypePlatformPayables:
			summary.Platform += balance
		default:
			// Unknown categories are excluded from every bucket.
		}
	}

	span.SetAttributes(attribute.Int("ledger.accounts", len(accounts)))

	if total := summary.Total(); total != 0 {
		_ = a.diagnostics.Emit(ctx, telemetry.SeverityWarn, diagnosticSource,
			"ledger buckets do not sum to zero", map[string]string{"total": total.String()})
	}

	return summary
}

// ListTransactions returns one page of the transaction log, newest first.
//
// The pre-pagination match count and derived page count ride along so
// dashboards can render pagers without a second query. Any read error aborts
// the call; no partial page is returned.
func (a *Aggregator) ListTransactions(ctx context.Context, query ListQuery) (Page, error) {
	if a == nil || a.transactions == nil {
		return Page{}, ErrFetchFailed
	}

	ctx, span := a.tracer.Start(ctx, "ledger.list_transactions")
	defer span.End()

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	result, err := a.transactions.ListTransactions(ctx, storage.TransactionQuery{
		Type:        strings.TrimSpace(query.Type),
		AccountType: strings.TrimSpace(query.AccountType),
		Start:       query.Start,
		End:         query.End,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		span.RecordError(err)
		_ = a.diagnostics.Emit(ctx, telemetry.SeverityError, diagnosticSource,
			"list transactions failed", map[string]string{"error": err.Error()})
		return Page{}, apperrors.Wrap(apperrors.CodeLedgerFetchFailed, "failed to fetch transactions", err)
	}

	totalPages := result.TotalCount / int64(pageSize)
	if result.TotalCount%int64(pageSize) != 0 {
		totalPages++
	}

	span.SetAttributes(
		attribute.Int("ledger.page", page),
		attribute.Int64("ledger.total_count", result.TotalCount),
	)

	return Page{
		Transactions: result.Transactions,
		Page:         page,
		PageSize:     pageSize,
		TotalCount:   result.TotalCount,
		TotalPages:   totalPages,
	}, nil
}
