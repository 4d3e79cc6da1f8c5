package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/logger"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/metrics"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/pagination"
)

// Service exposes price resolution and price book administration. Resolution
// is deterministic: the same request against the same book set always returns
// the same result.
type Service interface {
	ResolvePrice(ctx context.Context, req ResolveRequest) (*Resolution, error)
	CreatePriceBook(ctx context.Context, input PriceBookInput) (*PriceBookDTO, error)
	UpdatePriceBook(ctx context.Context, id uuid.UUID, input PriceBookInput) (*PriceBookDTO, error)
	DeletePriceBook(ctx context.Context, id uuid.UUID) error
	GetPriceBook(ctx context.Context, id uuid.UUID) (*PriceBookDTO, error)
	ListPriceBooks(ctx context.Context, params pagination.Params) ([]PriceBookDTO, string, error)
	UpsertEntry(ctx context.Context, bookID uuid.UUID, productID string, unitAmount decimal.Decimal) (*PriceBookDTO, error)
	RemoveEntry(ctx context.Context, bookID uuid.UUID, productID string) error
}

// PriceBookInput carries the writable price book fields.
type PriceBookInput struct {
	Name            string
	Currency        enums.Currency
	IsDefault       bool
	CustomerGroupID *string
	ValidFrom       *time.Time
	ValidTo         *time.Time
}

// PriceBookDTO is the external representation of a price book.
type PriceBookDTO struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Currency        enums.Currency `json:"currency"`
	IsDefault       bool           `json:"is_default"`
	CustomerGroupID *string        `json:"customer_group_id,omitempty"`
	ValidFrom       *time.Time     `json:"valid_from,omitempty"`
	ValidTo         *time.Time     `json:"valid_to,omitempty"`
	Entries         []EntryDTO     `json:"entries"`
	CreatedAt       time.Time      `json:"created_at"`
}

// EntryDTO is a single product price inside a book.
type EntryDTO struct {
	ProductID  string          `json:"product_id"`
	UnitAmount decimal.Decimal `json:"unit_amount"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	dbClient txRunner
	cache    *resolutionCache
	metrics  *metrics.CommerceMetrics
	logg     *logger.Logger
}

// NewService constructs a pricing service instance. The cache store may be nil
// when caching is disabled.
func NewService(repo Repository, dbClient txRunner, cache CacheStore, cacheTTL time.Duration, commerceMetrics *metrics.CommerceMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		cache:    newResolutionCache(cache, cacheTTL),
		metrics:  commerceMetrics,
		logg:     logg,
	}, nil
}

func (s *service) ResolvePrice(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	if req.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !req.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]any{"currency": string(req.Currency)})
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now().UTC()
	}

	if cached, ok := s.cache.get(ctx, req); ok {
		s.metrics.IncResolution("cache_hit")
		return cached, nil
	}

	start := time.Now()
	books, err := s.repo.ListByCurrency(ctx, req.Currency)
	if err != nil {
		s.metrics.IncResolution("error")
		return nil, err
	}

	res, err := resolve(books, req)
	s.metrics.ObserveResolution(string(req.Currency), time.Since(start))
	if err != nil {
		switch {
		case pkgerrors.HasCode(err, pkgerrors.CodeAmbiguousPriceBook):
			// Ambiguity is a catalog defect, not a caller mistake. Surface it
			// in the logs so operators notice before callers do.
			if s.logg != nil {
				s.logg.Error(ctx, "price book ambiguity detected", err)
			}
			s.metrics.IncResolution("ambiguous")
		case pkgerrors.HasCode(err, pkgerrors.CodeNoPriceFound):
			s.metrics.IncResolution("no_price")
		default:
			s.metrics.IncResolution("error")
		}
		return nil, err
	}

	s.metrics.IncResolution("resolved")
	s.cache.put(ctx, req, res)
	return res, nil
}

func (s *service) CreatePriceBook(ctx context.Context, input PriceBookInput) (*PriceBookDTO, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	book := &models.PriceBook{
		ID:              uuid.New(),
		Name:            input.Name,
		Currency:        input.Currency,
		IsDefault:       input.IsDefault,
		CustomerGroupID: normalizeGroup(input.CustomerGroupID),
		ValidFrom:       input.ValidFrom,
		ValidTo:         input.ValidTo,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.checkDefaultInvariant(ctx, repo, book, uuid.Nil); err != nil {
			return err
		}
		if err := repo.Create(ctx, book); err != nil {
			return mapBookWriteError(err, book.Currency)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, book.Currency)
	return bookDTO(*book), nil
}

func (s *service) UpdatePriceBook(ctx context.Context, id uuid.UUID, input PriceBookInput) (*PriceBookDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price book id is required")
	}
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	var updated *models.PriceBook
	var previousCurrency enums.Currency
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		book, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
		}
		previousCurrency = book.Currency

		book.Name = input.Name
		book.Currency = input.Currency
		book.IsDefault = input.IsDefault
		book.CustomerGroupID = normalizeGroup(input.CustomerGroupID)
		book.ValidFrom = input.ValidFrom
		book.ValidTo = input.ValidTo

		if err := s.checkDefaultInvariant(ctx, repo, book, id); err != nil {
			return err
		}
		if err := repo.Save(ctx, book); err != nil {
			return mapBookWriteError(err, book.Currency)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated.Currency)
	if previousCurrency != updated.Currency {
		s.invalidate(ctx, previousCurrency)
	}
	return bookDTO(*updated), nil
}

func (s *service) DeletePriceBook(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price book id is required")
	}

	var currency enums.Currency
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		book, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
		}
		if book.IsDefault {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete a currency's default price book").
				WithDetails(map[string]any{"currency": string(book.Currency)})
		}
		currency = book.Currency
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, currency)
	return nil
}

func (s *service) GetPriceBook(ctx context.Context, id uuid.UUID) (*PriceBookDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price book id is required")
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
	}
	return bookDTO(*book), nil
}

func (s *service) ListPriceBooks(ctx context.Context, params pagination.Params) ([]PriceBookDTO, string, error) {
	books, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(books) > limit {
		last := books[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		books = books[:limit]
	}

	dtos := make([]PriceBookDTO, 0, len(books))
	for _, book := range books {
		dtos = append(dtos, *bookDTO(book))
	}
	return dtos, nextCursor, nil
}

func (s *service) UpsertEntry(ctx context.Context, bookID uuid.UUID, productID string, unitAmount decimal.Decimal) (*PriceBookDTO, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price book id is required")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !unitAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit amount must be positive")
	}

	var updated *models.PriceBook
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		book, err := repo.FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
		}
		if err := repo.UpsertEntry(ctx, &models.PriceBookEntry{
			PriceBookID: bookID,
			ProductID:   productID,
			UnitAmount:  unitAmount,
		}); err != nil {
			return err
		}
		updated, err = repo.FindByID(ctx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated.Currency)
	return bookDTO(*updated), nil
}

func (s *service) RemoveEntry(ctx context.Context, bookID uuid.UUID, productID string) error {
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price book id is required")
	}
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var currency enums.Currency
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		book, err := repo.FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
		}
		currency = book.Currency

		removed, err := repo.DeleteEntry(ctx, bookID, productID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price book entry not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, currency)
	return nil
}

// checkDefaultInvariant enforces the write-time rule that at most one
// group-agnostic, unbounded default exists per currency.
func (s *service) checkDefaultInvariant(ctx context.Context, repo Repository, book *models.PriceBook, excludeID uuid.UUID) error {
	if !book.IsDefault || !book.IsGroupAgnostic() || !book.IsUnbounded() {
		return nil
	}
	count, err := repo.CountDefaults(ctx, book.Currency, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "currency already has a default price book").
			WithDetails(map[string]any{"currency": string(book.Currency)})
	}
	return nil
}

// mapBookWriteError translates a violation of the partial unique index on
// per-currency defaults into the same conflict checkDefaultInvariant reports.
// Two writers can both pass the count check before either commits; the index
// is what actually holds the line.
func mapBookWriteError(err error, currency enums.Currency) error {
	if db.IsUniqueViolation(err, "uniq_price_books_currency_default") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "currency already has a default price book").
			WithDetails(map[string]any{"currency": string(currency)})
	}
	return err
}

func (s *service) invalidate(ctx context.Context, currency enums.Currency) {
	if err := s.cache.invalidate(ctx, currency); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "price cache invalidation failed")
	}
}

func validateBookInput(input PriceBookInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]any{"currency": string(input.Currency)})
	}
	if input.ValidFrom != nil && input.ValidTo != nil && input.ValidTo.Before(*input.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_from must not be after valid_to")
	}
	return nil
}

func normalizeGroup(group *string) *string {
	if group == nil || *group == "" {
		return nil
	}
	return group
}

func bookDTO(book models.PriceBook) *PriceBookDTO {
	entries := make([]EntryDTO, 0, len(book.Entries))
	for _, entry := range book.Entries {
		entries = append(entries, EntryDTO{ProductID: entry.ProductID, UnitAmount: entry.UnitAmount})
	}
	return &PriceBookDTO{
		ID:              book.ID,
		Name:            book.Name,
		Currency:        book.Currency,
		IsDefault:       book.IsDefault,
		CustomerGroupID: book.CustomerGroupID,
		ValidFrom:       book.ValidFrom,
		ValidTo:         book.ValidTo,
		Entries:         entries,
		CreatedAt:       book.CreatedAt,
	}
}
