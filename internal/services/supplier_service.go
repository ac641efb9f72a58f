package services

import (
	"context"
	"errors"
	"fmt"

	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

type SupplierService struct {
	Repo *repositories.SupplierRepository
}

func NewSupplierService(repo *repositories.SupplierRepository) *SupplierService {
	return &SupplierService{Repo: repo}
}

func (s *SupplierService) CreateSupplier(ctx context.Context, req *models.CreateSupplierRequest) (*models.Supplier, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	supplier := &models.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	}
	if err := s.Repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, id int) (*models.Supplier, error) {
	return s.Repo.Get(ctx, id)
}

func (s *SupplierService) ListSuppliers(ctx context.Context) ([]*models.Supplier, error) {
	return s.Repo.List(ctx)
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, id int, req *models.CreateSupplierRequest) (*models.Supplier, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	supplier := &models.Supplier{
		ID:            id,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	}
	if err := s.Repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

// LinkProduct records or refreshes a supplier's offer for a product. The fx
// rate is snapshotted now and stays frozen on the row.
func (s *SupplierService) LinkProduct(ctx context.Context, req *models.CreateProductSupplierRequest, rates ledger.RateTable) (*models.ProductSupplier, error) {
	if req.UnitPrice <= 0 {
		return nil, errors.New("unit price must be positive")
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyTRY
	}
	rate := req.FxRateAtPurchase
	if rate == 0 {
		rate = rates.Rate(req.Currency)
	}

	link := &models.ProductSupplier{
		ProductID:        req.ProductID,
		SupplierID:       req.SupplierID,
		UnitPrice:        req.UnitPrice,
		Currency:         req.Currency,
		FxRateAtPurchase: rate,
	}
	if err := s.Repo.UpsertProductSupplier(ctx, link); err != nil {
		return nil, fmt.Errorf("link product to supplier: %w", err)
	}
	return link, nil
}

func (s *SupplierService) ListByProduct(ctx context.Context, productID int) ([]*models.ProductSupplier, error) {
	return s.Repo.ListByProduct(ctx, productID)
}

func (s *SupplierService) UnlinkProduct(ctx context.Context, productID, supplierID int) error {
	return s.Repo.DeleteProductSupplier(ctx, productID, supplierID)
}

// ComparePrices converts every supplier's offer to TRY with the live rate
// table so offers in different currencies compare fairly, and flags the
// cheapest. Live rates, not the frozen purchase snapshots: the question being
// answered is "who is cheapest if I buy today".
func (s *SupplierService) ComparePrices(ctx context.Context, productID int, rates ledger.RateTable) ([]models.SupplierPriceComparison, error) {
	links, err := s.Repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}

	comparisons := make([]models.SupplierPriceComparison, 0, len(links))
	bestIdx, bestPrice := -1, 0.0
	for i, link := range links {
		inHome := ledger.Round2(ledger.ToHome(link.UnitPrice, link.Currency, rates))
		comparisons = append(comparisons, models.SupplierPriceComparison{
			SupplierID:   link.SupplierID,
			SupplierName: link.SupplierName,
			UnitPrice:    link.UnitPrice,
			Currency:     link.Currency,
			PriceInHome:  inHome,
		})
		if bestIdx == -1 || inHome < bestPrice {
			bestIdx, bestPrice = i, inHome
		}
	}
	comparisons[bestIdx].Best = true
	return comparisons, nil
}
