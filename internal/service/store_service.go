package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoreServiceImpl implements ports.StoreService. Checkout reuses the
// same transactional shape as the award path: lock the wallet row,
// mutate the balance, append exactly one ledger entry.
type StoreServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	productRepo ports.ProductRepository
	orderRepo   ports.OrderRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewStoreService creates a new StoreServiceImpl.
func NewStoreService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	productRepo ports.ProductRepository,
	orderRepo ports.OrderRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *StoreServiceImpl {
	return &StoreServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		transactor:  transactor,
		log:         log,
	}
}

// ListProducts returns the store catalog.
func (s *StoreServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list products: %w", err))
	}
	return products, nil
}

// GetProduct returns one catalog item.
func (s *StoreServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrNotFound("product")
	}
	return product, nil
}

// Checkout purchases the requested items with points. Stock and balance
// checks, the wallet debit, the spend ledger entry and the order insert
// all commit in one transaction or not at all.
func (s *StoreServiceImpl) Checkout(ctx context.Context, req ports.CheckoutRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperror.Validation("Item quantity must be greater than 0")
		}
	}

	buyer, err := s.accountRepo.GetByIDAndRole(ctx, req.AccountID, domain.RoleStudent)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load buyer: %w", err))
	}
	if buyer == nil {
		return nil, apperror.Forbidden("Only students can place orders")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New(),
		AccountID: buyer.ID,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var names []string
	for _, item := range req.Items {
		product, err := s.productRepo.GetByIDForUpdate(ctx, dbTx, item.ProductID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock product: %w", err))
		}
		if product == nil {
			return nil, apperror.ErrNotFound("product")
		}
		if !product.InStock(item.Quantity) {
			return nil, apperror.ErrOutOfStock(product.Name)
		}

		lineTotal := product.PricePoints * item.Quantity
		order.TotalPoints += lineTotal
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			PointsSpent: lineTotal,
		})
		names = append(names, product.Name)

		if err := s.productRepo.DecrementStock(ctx, dbTx, product.ID, item.Quantity); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("decrement stock: %w", err))
		}
	}

	wallet, err := s.walletRepo.GetOrCreateForUpdate(ctx, dbTx, buyer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet.Balance < order.TotalPoints {
		return nil, apperror.ErrInsufficientPoints()
	}

	newBalance := wallet.Balance - order.TotalPoints
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Amount:      -order.TotalPoints,
		Kind:        domain.EntryKindSpend,
		Description: fmt.Sprintf("Store purchase: %s", strings.Join(names, ", ")),
		CreatedAt:   now,
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit order tx: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("account_id", buyer.ID.String()).
		Int("total_points", order.TotalPoints).
		Msg("order placed")

	return order, nil
}

// ListOrders returns the account's orders, newest first.
func (s *StoreServiceImpl) ListOrders(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}
