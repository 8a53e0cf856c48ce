package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	catalogDomain "github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/modules/lta/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"go.uber.org/zap"
)

type LtaService struct {
	repo     domain.LtaRepository
	products catalogDomain.ProductFinder
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewLtaService(repo domain.LtaRepository, products catalogDomain.ProductFinder, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *LtaService {
	return &LtaService{
		repo:     repo,
		products: products,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func clientProductsKey(clientID uuid.UUID) string {
	return "client-products:" + clientID.String()
}

// Create stores a new LTA in draft status.
func (s *LtaService) Create(ctx context.Context, lta *domain.Lta) error {
	lta.Status = domain.StatusDraft
	if lta.Currency == "" {
		lta.Currency = "USD"
	}
	return s.repo.Create(ctx, lta)
}

func (s *LtaService) Get(ctx context.Context, id uuid.UUID) (*domain.Lta, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LtaService) List(ctx context.Context, filter domain.LtaFilter) ([]domain.Lta, error) {
	return s.repo.List(ctx, filter)
}

// ListForClient returns the client's active agreements.
func (s *LtaService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Lta, error) {
	return s.repo.List(ctx, domain.LtaFilter{ClientID: &clientID, Status: domain.StatusActive, Limit: 100})
}

func (s *LtaService) ListProducts(ctx context.Context, ltaID uuid.UUID) ([]domain.LtaProduct, error) {
	if _, err := s.repo.GetByID(ctx, ltaID); err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, ltaID)
}

// SetStatus applies an admin status change. Activation without dates starts
// the agreement now for the default term.
func (s *LtaService) SetStatus(ctx context.Context, id uuid.UUID, to domain.Status) (*domain.Lta, error) {
	lta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lta.Status.CanTransitionTo(to) {
		return nil, domain.ErrInvalidStatusTransition
	}

	start, end := s.termFor(lta, to)
	if err := s.repo.UpdateStatus(ctx, id, lta.Status, to, start, end); err != nil {
		return nil, err
	}
	lta.Status = to
	if start != nil {
		lta.StartDate, lta.EndDate = start, end
	}
	s.InvalidateClientProducts(ctx, lta.ClientID)
	return lta, nil
}

func (s *LtaService) termFor(lta *domain.Lta, to domain.Status) (*time.Time, *time.Time) {
	if to != domain.StatusActive || lta.StartDate != nil {
		return nil, nil
	}
	start := s.now().UTC()
	end := start.Add(domain.DefaultTerm)
	return &start, &end
}

// Activate moves a draft LTA to active inside the caller's transaction.
// An already active LTA is left as is.
func (s *LtaService) Activate(ctx context.Context, id uuid.UUID) (*domain.Lta, error) {
	lta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch lta.Status {
	case domain.StatusActive:
		return lta, nil
	case domain.StatusDraft:
	default:
		return nil, domain.ErrInvalidStatusTransition
	}

	start := s.now().UTC()
	end := start.Add(domain.DefaultTerm)
	if err := s.repo.UpdateStatus(ctx, id, domain.StatusDraft, domain.StatusActive, &start, &end); err != nil {
		return nil, err
	}
	lta.Status, lta.StartDate, lta.EndDate = domain.StatusActive, &start, &end
	return lta, nil
}

// UpsertProducts writes contract prices for every line inside the caller's
// transaction. Cache invalidation is left to the caller after commit.
func (s *LtaService) UpsertProducts(ctx context.Context, ltaID uuid.UUID, currency string, lines []domain.ContractLine) error {
	for _, line := range lines {
		if line.ContractPrice < 0 {
			return domain.ErrNegativePrice
		}
		if err := s.repo.UpsertProduct(ctx, &domain.LtaProduct{
			LtaID:         ltaID,
			ProductID:     line.ProductID,
			ContractPrice: line.ContractPrice,
			Currency:      currency,
		}); err != nil {
			return err
		}
	}
	return nil
}

// AssignProduct sets the contract price of one product.
func (s *LtaService) AssignProduct(ctx context.Context, ltaID, productID uuid.UUID, price float64) (*domain.LtaProduct, error) {
	if price < 0 {
		return nil, domain.ErrNegativePrice
	}
	lta, err := s.repo.GetByID(ctx, ltaID)
	if err != nil {
		return nil, err
	}
	found, err := s.products.FindByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrUnknownProduct
	}

	lp := &domain.LtaProduct{LtaID: ltaID, ProductID: productID, ContractPrice: price, Currency: lta.Currency}
	if err := s.repo.UpsertProduct(ctx, lp); err != nil {
		return nil, err
	}
	s.InvalidateClientProducts(ctx, lta.ClientID)
	return lp, nil
}

func (s *LtaService) RemoveProduct(ctx context.Context, ltaID, productID uuid.UUID) error {
	lta, err := s.repo.GetByID(ctx, ltaID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveProduct(ctx, ltaID, productID); err != nil {
		return err
	}
	s.InvalidateClientProducts(ctx, lta.ClientID)
	return nil
}

// ClientProducts returns the products a client may order, read through the
// cache. The bool reports a cache hit.
func (s *LtaService) ClientProducts(ctx context.Context, clientID uuid.UUID) ([]domain.ContractedProduct, bool, error) {
	key := clientProductsKey(clientID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var products []domain.ContractedProduct
		if json.Unmarshal(raw, &products) == nil {
			return products, true, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("client products cache read failed", zap.String("key", key), zap.Error(err))
	}

	products, err := s.repo.ListContractedProducts(ctx, clientID)
	if err != nil {
		return nil, false, err
	}
	if raw, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("client products cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return products, false, nil
}

func (s *LtaService) InvalidateClientProducts(ctx context.Context, clientID uuid.UUID) {
	if err := s.cache.Delete(ctx, clientProductsKey(clientID)); err != nil {
		s.logger.Warn("client products cache eviction failed", zap.String("client_id", clientID.String()), zap.Error(err))
	}
}

// ContractPrice resolves the price a client pays for a product under an LTA.
// The LTA must belong to the client and be active.
func (s *LtaService) ContractPrice(ctx context.Context, clientID, ltaID, productID uuid.UUID) (*domain.LtaProduct, error) {
	lta, err := s.repo.GetByID(ctx, ltaID)
	if err != nil {
		return nil, err
	}
	if lta.ClientID != clientID {
		return nil, domain.ErrLtaNotFound
	}
	if lta.Status != domain.StatusActive {
		return nil, domain.ErrLtaNotActive
	}
	return s.repo.GetProduct(ctx, ltaID, productID)
}
