package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/cache"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

type ProductService struct {
	DB    *pgxpool.Pool
	Repo  *repositories.ProductRepository
	Stock *repositories.StockMovementRepository
}

func NewProductService(db *pgxpool.Pool, repo *repositories.ProductRepository,
	stock *repositories.StockMovementRepository) *ProductService {
	return &ProductService{DB: db, Repo: repo, Stock: stock}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Unit == "" {
		req.Unit = models.UnitPiece
	}
	if req.PurchaseCurrency == "" {
		req.PurchaseCurrency = models.CurrencyTRY
	}
	if req.PurchaseFxRate == 0 {
		req.PurchaseFxRate = 1
	}

	product := &models.Product{
		CategoryID:       req.CategoryID,
		Name:             req.Name,
		Description:      req.Description,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		Unit:             req.Unit,
		StockQuantity:    req.StockQuantity,
		MinStockLevel:    req.MinStockLevel,
		PurchasePrice:    req.PurchasePrice,
		PurchaseCurrency: req.PurchaseCurrency,
		PurchaseFxRate:   req.PurchaseFxRate,
		SalePrice:        req.SalePrice,
	}

	if err := s.Repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	// Initial quantity is journaled so the stock history starts at a
	// traceable row.
	if product.StockQuantity != 0 {
		tx, err := s.DB.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)

		movement := &models.StockMovement{
			ProductID:     product.ID,
			ChangeQty:     product.StockQuantity,
			Type:          models.MovementPurchase,
			ReferenceType: "product",
			ReferenceID:   &product.ID,
			UnitCost:      &product.PurchasePrice,
			FxRate:        &product.PurchaseFxRate,
			Notes:         "initial stock",
		}
		if err := s.Stock.Insert(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("record initial stock: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	cache.InvalidateProductCaches(ctx)
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, errors.New("barcode is required")
	}
	return s.Repo.GetByBarcode(ctx, barcode)
}

func (s *ProductService) ListProducts(ctx context.Context, search string, categoryID int) ([]*models.Product, error) {
	return s.Repo.List(ctx, search, categoryID)
}

func (s *ProductService) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	return s.Repo.ListLowStock(ctx)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *models.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	product, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Description = req.Description
	product.SKU = req.SKU
	product.Barcode = req.Barcode
	product.Unit = req.Unit
	product.MinStockLevel = req.MinStockLevel
	product.PurchasePrice = req.PurchasePrice
	product.PurchaseCurrency = req.PurchaseCurrency
	product.PurchaseFxRate = req.PurchaseFxRate
	product.SalePrice = req.SalePrice

	if err := s.Repo.Update(ctx, product); err != nil {
		return nil, err
	}

	cache.InvalidateProductCaches(ctx)
	return s.Repo.Get(ctx, id)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateProductCaches(ctx)
	return nil
}

// AdjustStock applies a manual correction, journaled as an ADJUSTMENT.
func (s *ProductService) AdjustStock(ctx context.Context, req *models.AdjustStockRequest) (*models.Product, error) {
	if req.ChangeQty == 0 {
		return nil, errors.New("change quantity must not be zero")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.Repo.AdjustStock(ctx, tx, req.ProductID, req.ChangeQty); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID: req.ProductID,
		ChangeQty: req.ChangeQty,
		Type:      models.MovementAdjustment,
		Notes:     req.Notes,
	}
	if err := s.Stock.Insert(ctx, tx, movement); err != nil {
		return nil, fmt.Errorf("record adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cache.InvalidateProductCaches(ctx)
	return s.Repo.Get(ctx, req.ProductID)
}

func (s *ProductService) StockHistory(ctx context.Context, productID, limit int) ([]*models.StockMovement, error) {
	return s.Stock.ListByProduct(ctx, productID, limit)
}

func (s *ProductService) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.Name == "" {
		return nil, errors.New("name is required")
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *ProductService) DeleteCategory(ctx context.Context, id int) error {
	return s.Repo.DeleteCategory(ctx, id)
}
