package warehouses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
)

// Service exposes warehouse administration.
type Service interface {
	Create(ctx context.Context, name string) (*WarehouseDTO, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*WarehouseDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error)
	List(ctx context.Context) ([]WarehouseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WarehouseDTO is the external representation of a warehouse.
type WarehouseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	dbClient txRunner
}

// NewService constructs a warehouse service instance.
func NewService(repo Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) Create(ctx context.Context, name string) (*WarehouseDTO, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	warehouse := &models.Warehouse{ID: uuid.New(), Name: name}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return dtoFrom(*warehouse), nil
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (*WarehouseDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var updated *models.Warehouse
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		warehouse, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		warehouse.Name = name
		if err := repo.Save(ctx, warehouse); err != nil {
			return err
		}
		updated = warehouse
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtoFrom(*updated), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	warehouse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}
	return dtoFrom(*warehouse), nil
}

func (s *service) List(ctx context.Context) ([]WarehouseDTO, error) {
	warehouses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]WarehouseDTO, 0, len(warehouses))
	for _, warehouse := range warehouses {
		dtos = append(dtos, *dtoFrom(warehouse))
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		warehouse, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		active, err := repo.CountActiveInventory(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "warehouse still holds stock or reservations").
				WithDetails(map[string]any{"active_rows": active})
		}
		return repo.Delete(ctx, id)
	})
}

func dtoFrom(warehouse models.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{ID: warehouse.ID, Name: warehouse.Name, CreatedAt: warehouse.CreatedAt}
}
