package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/repo"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/pagination"
)

// Repository manages persistence for price books and their entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByCurrency(ctx context.Context, currency enums.Currency) ([]models.PriceBook, error)
	List(ctx context.Context, params pagination.Params) ([]models.PriceBook, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PriceBook, error)
	Create(ctx context.Context, book *models.PriceBook) error
	Save(ctx context.Context, book *models.PriceBook) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDefaults(ctx context.Context, currency enums.Currency, excludeID uuid.UUID) (int64, error)
	UpsertEntry(ctx context.Context, entry *models.PriceBookEntry) error
	DeleteEntry(ctx context.Context, bookID uuid.UUID, productID string) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a price book repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// ListByCurrency loads every book for the currency with entries attached.
// Resolution needs complete records, never partially loaded ones.
func (r *repository) ListByCurrency(ctx context.Context, currency enums.Currency) ([]models.PriceBook, error) {
	var books []models.PriceBook
	err := r.DB(ctx).
		Preload("Entries").
		Where("currency = ?", currency).
		Order("created_at ASC, id ASC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.PriceBook, error) {
	query := r.DB(ctx).
		Preload("Entries").
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var books []models.PriceBook
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PriceBook, error) {
	var book models.PriceBook
	err := r.DB(ctx).
		Preload("Entries").
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *repository) Create(ctx context.Context, book *models.PriceBook) error {
	return r.DB(ctx).Create(book).Error
}

func (r *repository) Save(ctx context.Context, book *models.PriceBook) error {
	return r.DB(ctx).
		Model(&models.PriceBook{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"name":              book.Name,
			"currency":          book.Currency,
			"is_default":        book.IsDefault,
			"customer_group_id": book.CustomerGroupID,
			"valid_from":        book.ValidFrom,
			"valid_to":          book.ValidTo,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).
		Where("price_book_id = ?", id).
		Delete(&models.PriceBookEntry{}).Error; err != nil {
		return err
	}
	return r.DB(ctx).
		Where("id = ?", id).
		Delete(&models.PriceBook{}).Error
}

// CountDefaults counts group-agnostic, unbounded defaults for a currency,
// excluding the given book id when updating in place.
func (r *repository) CountDefaults(ctx context.Context, currency enums.Currency, excludeID uuid.UUID) (int64, error) {
	var count int64
	query := r.DB(ctx).
		Model(&models.PriceBook{}).
		Where("currency = ? AND is_default = ?", currency, true).
		Where("(customer_group_id IS NULL OR customer_group_id = '')").
		Where("valid_from IS NULL AND valid_to IS NULL")
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) UpsertEntry(ctx context.Context, entry *models.PriceBookEntry) error {
	result := r.DB(ctx).
		Model(&models.PriceBookEntry{}).
		Where("price_book_id = ? AND product_id = ?", entry.PriceBookID, entry.ProductID).
		Update("unit_amount", entry.UnitAmount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) DeleteEntry(ctx context.Context, bookID uuid.UUID, productID string) (int64, error) {
	result := r.DB(ctx).
		Where("price_book_id = ? AND product_id = ?", bookID, productID).
		Delete(&models.PriceBookEntry{})
	return result.RowsAffected, result.Error
}
