package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	catalogDomain "github.com/ltaportal/procurement/internal/modules/catalog/domain"
	ltaDomain "github.com/ltaportal/procurement/internal/modules/lta/domain"
	notificationDomain "github.com/ltaportal/procurement/internal/modules/notification/domain"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	eventTopic      = "price_offers"
	numberAttempts  = 3
	DefaultValidity = 30 * 24 * time.Hour
)

// Agreements is the part of the LTA module that offers read and activate.
type Agreements interface {
	Get(ctx context.Context, id uuid.UUID) (*ltaDomain.Lta, error)
	Activate(ctx context.Context, id uuid.UUID) (*ltaDomain.Lta, error)
	UpsertProducts(ctx context.Context, ltaID uuid.UUID, currency string, lines []ltaDomain.ContractLine) error
	InvalidateClientProducts(ctx context.Context, clientID uuid.UUID)
}

type Notifier interface {
	NotifyAsync(ctx context.Context, recipientID uuid.UUID, in notificationDomain.NotificationInput)
	NotifyAdminsAsync(ctx context.Context, in notificationDomain.NotificationInput)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Options struct {
	TaxRate float64
}

type RequestLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type SubmitRequest struct {
	LtaID *uuid.UUID
	Items []RequestLine
	Notes string
}

type OfferLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type CreateOffer struct {
	RequestID  *uuid.UUID
	ClientID   uuid.UUID
	LtaID      uuid.UUID
	Items      []OfferLine
	Currency   string
	Notes      string
	ValidUntil *time.Time
}

type PriceOfferService struct {
	requests   domain.RequestRepository
	offers     domain.OfferRepository
	tx         TxRunner
	agreements Agreements
	products   catalogDomain.ProductFinder
	notifier   Notifier
	events     events.Publisher
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

func NewPriceOfferService(
	requests domain.RequestRepository,
	offers domain.OfferRepository,
	tx TxRunner,
	agreements Agreements,
	products catalogDomain.ProductFinder,
	notifier Notifier,
	publisher events.Publisher,
	opts Options,
	logger *zap.Logger,
) *PriceOfferService {
	return &PriceOfferService{
		requests:   requests,
		offers:     offers,
		tx:         tx,
		agreements: agreements,
		products:   products,
		notifier:   notifier,
		events:     publisher,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// withNumber retries create with a fresh number when the generated one collides.
func withNumber(prefix string, now time.Time, create func(number string) error) error {
	var err error
	for range numberAttempts {
		if err = create(domain.NewNumber(prefix, now)); !errors.Is(err, domain.ErrDuplicateNumber) {
			return err
		}
	}
	return err
}

func (s *PriceOfferService) loadProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalogDomain.Product, error) {
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]catalogDomain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, domain.ErrUnknownProduct
		}
	}
	return byID, nil
}

// Submit records a client's price request and tells the admins about it.
func (s *PriceOfferService) Submit(ctx context.Context, clientID uuid.UUID, in SubmitRequest) (*domain.PriceRequest, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	items := make(domain.RequestItems, 0, len(in.Items))
	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		items = append(items, domain.RequestItem{ProductID: line.ProductID, Quantity: line.Quantity})
		ids = append(ids, line.ProductID)
	}
	if _, err := s.loadProducts(ctx, ids); err != nil {
		return nil, err
	}
	if in.LtaID != nil {
		lta, err := s.agreements.Get(ctx, *in.LtaID)
		if err != nil || lta.ClientID != clientID {
			return nil, domain.ErrLtaUnavailable
		}
	}

	req := &domain.PriceRequest{
		ClientID: clientID,
		LtaID:    in.LtaID,
		Items:    items,
		Notes:    optional(in.Notes),
		Status:   domain.RequestPending,
	}
	err := withNumber(domain.RequestPrefix, s.now(), func(number string) error {
		req.RequestNumber = number
		return s.requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypePriceRequestReceived,
		Title:      "New price request",
		Message:    fmt.Sprintf("Price request %s covers %d products.", req.RequestNumber, len(req.Items)),
		ActionURL:  "/admin/price-requests/" + req.ID.String(),
		ActionType: notificationDomain.ActionViewRequest,
	})
	return req, nil
}

func (s *PriceOfferService) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PriceRequest, error) {
	return s.requests.List(ctx, filter)
}

// CreateOffer prices a draft offer for a client's agreement, optionally
// closing the price request it answers in the same transaction.
func (s *PriceOfferService) CreateOffer(ctx context.Context, adminID uuid.UUID, in CreateOffer) (*domain.PriceOffer, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	now := s.now().UTC()
	validUntil := now.Add(DefaultValidity)
	if in.ValidUntil != nil {
		if !in.ValidUntil.After(now) {
			return nil, domain.ErrInvalidValidity
		}
		validUntil = in.ValidUntil.UTC()
	}

	lta, err := s.agreements.Get(ctx, in.LtaID)
	if errors.Is(err, ltaDomain.ErrLtaNotFound) {
		return nil, domain.ErrLtaUnavailable
	}
	if err != nil {
		return nil, err
	}
	if lta.ClientID != in.ClientID || lta.Status == ltaDomain.StatusInactive {
		return nil, domain.ErrLtaUnavailable
	}

	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if line.UnitPrice < 0 {
			return nil, domain.ErrNegativePrice
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.loadProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make(domain.OfferItems, 0, len(in.Items))
	for _, line := range in.Items {
		p := products[line.ProductID]
		items = append(items, domain.OfferItem{
			ProductID: p.ID,
			SKU:       p.SKU,
			NameEn:    p.NameEn,
			NameAr:    p.NameAr,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: domain.RoundCents(float64(line.Quantity) * line.UnitPrice),
		})
	}
	subtotal, tax, total := items.Totals(s.opts.TaxRate)

	currency := in.Currency
	if currency == "" {
		currency = lta.Currency
	}
	offer := &domain.PriceOffer{
		RequestID:  in.RequestID,
		ClientID:   in.ClientID,
		LtaID:      in.LtaID,
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		Currency:   currency,
		Status:     domain.OfferDraft,
		Notes:      optional(in.Notes),
		ValidUntil: validUntil,
		CreatedBy:  adminID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if in.RequestID != nil {
			req, err := s.requests.GetByID(ctx, *in.RequestID)
			if err != nil {
				return err
			}
			if req.ClientID != in.ClientID {
				return domain.ErrRequestNotFound
			}
			if err := s.requests.UpdateStatus(ctx, req.ID, domain.RequestPending, domain.RequestProcessed); err != nil {
				return err
			}
		}
		return withNumber(domain.OfferPrefix, now, func(number string) error {
			offer.OfferNumber = number
			return s.offers.Create(ctx, offer)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Price offer created",
		zap.String("offer_id", offer.ID.String()),
		zap.String("offer_number", offer.OfferNumber))
	return offer, nil
}

func (s *PriceOfferService) ListOffers(ctx context.Context, filter domain.OfferFilter) ([]domain.PriceOffer, error) {
	offers, err := s.offers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range offers {
		offers[i].Resolve(now)
	}
	return offers, nil
}

func (s *PriceOfferService) GetOffer(ctx context.Context, id uuid.UUID) (*domain.PriceOffer, error) {
	o, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.Resolve(s.now()), nil
}

func offerURL(id uuid.UUID) string {
	return "/price-offers/" + id.String()
}

// Send publishes a draft offer to its client.
func (s *PriceOfferService) Send(ctx context.Context, id uuid.UUID) (*domain.PriceOffer, error) {
	o, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OfferDraft {
		return nil, domain.ErrOfferNotDraft
	}
	now := s.now().UTC()
	if !o.ValidUntil.After(now) {
		return nil, domain.ErrOfferExpired
	}

	o.Status, o.SentAt = domain.OfferSent, &now
	if err := s.offers.Transition(ctx, o, domain.OfferDraft); err != nil {
		return nil, err
	}

	s.notifier.NotifyAsync(ctx, o.ClientID, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypePriceOfferReady,
		Title:      "Price offer ready",
		Message:    fmt.Sprintf("Price offer %s is ready for your review until %s.", o.OfferNumber, o.ValidUntil.Format("2006-01-02")),
		ActionURL:  offerURL(o.ID),
		ActionType: notificationDomain.ActionReviewRequest,
	})
	s.publish("price_offer.sent", o)
	return o, nil
}

// AttachDocument links a generated PDF to the offer. The client is told
// once the offer is visible to them.
func (s *PriceOfferService) AttachDocument(ctx context.Context, offerID, documentID uuid.UUID) error {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if err := s.offers.SetDocument(ctx, offerID, documentID); err != nil {
		return err
	}
	if o.Status == domain.OfferDraft {
		return nil
	}
	s.notifier.NotifyAsync(ctx, o.ClientID, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeDocumentReady,
		Title:      "Price offer document available",
		Message:    fmt.Sprintf("The PDF for price offer %s can be downloaded.", o.OfferNumber),
		ActionURL:  "/documents/" + documentID.String(),
		ActionType: notificationDomain.ActionDownloadPDF,
	})
	return nil
}

func (s *PriceOfferService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.offers.GetByID(ctx, id); err != nil {
		return err
	}
	return s.offers.DeleteDraft(ctx, id)
}

func (s *PriceOfferService) owned(ctx context.Context, clientID, id uuid.UUID) (*domain.PriceOffer, error) {
	o, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ClientID != clientID || o.Status == domain.OfferDraft {
		return nil, domain.ErrOfferNotFound
	}
	return o, nil
}

// ListForClient hides drafts.
func (s *PriceOfferService) ListForClient(ctx context.Context, clientID uuid.UUID, status domain.OfferStatus, limit, offset int) ([]domain.PriceOffer, error) {
	return s.ListOffers(ctx, domain.OfferFilter{ClientID: &clientID, Status: status, ExcludeDraft: true, Limit: limit, Offset: offset})
}

// GetForClient marks a sent offer viewed on the client's first read.
func (s *PriceOfferService) GetForClient(ctx context.Context, clientID, id uuid.UUID) (*domain.PriceOffer, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if o.EffectiveStatus(now) == domain.OfferSent {
		o.Status, o.ViewedAt = domain.OfferViewed, &now
		err := s.offers.Transition(ctx, o, domain.OfferSent)
		if errors.Is(err, domain.ErrStatusConflict) {
			return s.GetOffer(ctx, id)
		}
		if err != nil {
			return nil, err
		}
	}
	return o.Resolve(now), nil
}

func (s *PriceOfferService) respondable(o *domain.PriceOffer, now time.Time) error {
	switch o.EffectiveStatus(now) {
	case domain.OfferSent, domain.OfferViewed:
		return nil
	case domain.OfferExpired:
		return domain.ErrOfferExpired
	}
	return domain.ErrInvalidStatusTransition
}

// Accept marks the offer accepted, activates its LTA if still a draft and
// writes every line as a contract price. All three happen in one transaction.
func (s *PriceOfferService) Accept(ctx context.Context, clientID, id uuid.UUID) (*domain.PriceOffer, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.respondable(o, now); err != nil {
		return nil, err
	}

	lines := make([]ltaDomain.ContractLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = ltaDomain.ContractLine{ProductID: it.ProductID, ContractPrice: it.UnitPrice}
	}

	from := o.Status
	o.Status, o.RespondedAt = domain.OfferAccepted, &now
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.offers.Transition(ctx, o, from); err != nil {
			return err
		}
		if _, err := s.agreements.Activate(ctx, o.LtaID); err != nil {
			if errors.Is(err, ltaDomain.ErrInvalidStatusTransition) {
				return domain.ErrLtaUnavailable
			}
			return fmt.Errorf("activate agreement: %w", err)
		}
		if err := s.agreements.UpsertProducts(ctx, o.LtaID, o.Currency, lines); err != nil {
			return fmt.Errorf("upsert contract prices: %w", err)
		}
		return nil
	})
	if err != nil {
		o.Status, o.RespondedAt = from, nil
		return nil, err
	}

	s.agreements.InvalidateClientProducts(ctx, clientID)
	metrics.PriceOffersAccepted.Inc()
	s.publish("price_offer.accepted", o)
	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypePriceOfferResponded,
		Title:      "Price offer accepted",
		Message:    fmt.Sprintf("Price offer %s was accepted.", o.OfferNumber),
		ActionURL:  "/admin" + offerURL(o.ID),
		ActionType: notificationDomain.ActionViewRequest,
	})
	s.logger.Info("Price offer accepted",
		zap.String("offer_id", o.ID.String()),
		zap.String("lta_id", o.LtaID.String()),
		zap.Int("lines", len(lines)))
	return o, nil
}

func (s *PriceOfferService) Reject(ctx context.Context, clientID, id uuid.UUID, note string) (*domain.PriceOffer, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.respondable(o, now); err != nil {
		return nil, err
	}

	from := o.Status
	o.Status, o.RespondedAt, o.ResponseNote = domain.OfferRejected, &now, optional(note)
	if err := s.offers.Transition(ctx, o, from); err != nil {
		return nil, err
	}

	s.publish("price_offer.rejected", o)
	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypePriceOfferResponded,
		Title:      "Price offer rejected",
		Message:    fmt.Sprintf("Price offer %s was rejected.", o.OfferNumber),
		ActionURL:  "/admin" + offerURL(o.ID),
		ActionType: notificationDomain.ActionViewRequest,
	})
	return o, nil
}

func (s *PriceOfferService) publish(eventType string, o *domain.PriceOffer) {
	events.PublishAsync(s.events, s.logger, eventTopic, events.NewEvent(eventType, o.ID, map[string]any{
		"offer_number": o.OfferNumber,
		"client_id":    o.ClientID,
		"lta_id":       o.LtaID,
		"total":        o.Total,
		"currency":     o.Currency,
	}))
}
