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
	"github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/metrics"
	"go.uber.org/zap"
)

const eventTopic = "orders"

// ContractPricer resolves the contract price of a product for a client.
type ContractPricer interface {
	ContractPrice(ctx context.Context, clientID, ltaID, productID uuid.UUID) (*ltaDomain.LtaProduct, error)
}

type Notifier interface {
	NotifyAsync(ctx context.Context, recipientID uuid.UUID, in notificationDomain.NotificationInput)
	NotifyAdminsAsync(ctx context.Context, in notificationDomain.NotificationInput)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type PlaceOrder struct {
	LtaID uuid.UUID
	Items []ItemInput
}

type ModificationInput struct {
	Type   domain.ModificationType
	Items  []ItemInput
	Reason string
}

type StatusChange struct {
	Status      domain.Status
	Notes       string
	IsAdminNote bool
}

type OrderService struct {
	orders   domain.OrderRepository
	mods     domain.ModificationRepository
	tx       TxRunner
	pricer   ContractPricer
	products catalogDomain.ProductFinder
	clients  ClientDirectory
	notifier Notifier
	events   events.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(
	orders domain.OrderRepository,
	mods domain.ModificationRepository,
	tx TxRunner,
	pricer ContractPricer,
	products catalogDomain.ProductFinder,
	clients ClientDirectory,
	notifier Notifier,
	publisher events.Publisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		mods:     mods,
		tx:       tx,
		pricer:   pricer,
		products: products,
		clients:  clients,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

func shortRef(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

func orderURL(id uuid.UUID) string {
	return "/orders/" + id.String()
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// priceItems merges duplicate lines and prices every product from the
// client's contract.
func (s *OrderService) priceItems(ctx context.Context, clientID, ltaID uuid.UUID, lines []ItemInput) (domain.Items, string, error) {
	if len(lines) == 0 {
		return nil, "", domain.ErrEmptyOrder
	}
	quantities := make(map[uuid.UUID]int, len(lines))
	var ids []uuid.UUID
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, "", domain.ErrInvalidQuantity
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, "", fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]catalogDomain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	items := make(domain.Items, 0, len(ids))
	currency := ""
	for _, id := range ids {
		lp, err := s.pricer.ContractPrice(ctx, clientID, ltaID, id)
		switch {
		case errors.Is(err, ltaDomain.ErrLtaNotFound), errors.Is(err, ltaDomain.ErrLtaNotActive):
			return nil, "", domain.ErrLtaUnavailable
		case errors.Is(err, ltaDomain.ErrProductNotContracted):
			return nil, "", domain.ErrProductNotContracted
		case err != nil:
			return nil, "", err
		}
		p, ok := byID[id]
		if !ok {
			return nil, "", domain.ErrProductNotContracted
		}
		currency = lp.Currency
		qty := quantities[id]
		items = append(items, domain.Item{
			ProductID: id,
			SKU:       p.SKU,
			NameEn:    p.NameEn,
			NameAr:    p.NameAr,
			Quantity:  qty,
			UnitPrice: lp.ContractPrice,
			LineTotal: domain.LineTotal(qty, lp.ContractPrice),
		})
	}
	return items, currency, nil
}

// Create places an order priced from the client's agreement. The order and
// its first history row are written in one transaction.
func (s *OrderService) Create(ctx context.Context, clientID uuid.UUID, in PlaceOrder) (*domain.Order, error) {
	items, currency, err := s.priceItems(ctx, clientID, in.LtaID, in.Items)
	if err != nil {
		return nil, err
	}

	ltaID := in.LtaID
	o := &domain.Order{
		ClientID:    clientID,
		LtaID:       &ltaID,
		Items:       items,
		TotalAmount: items.Total(),
		Currency:    currency,
		Status:      domain.StatusPending,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return s.orders.AppendHistory(ctx, &domain.History{
			OrderID:   o.ID,
			Status:    domain.StatusPending,
			ChangedBy: clientID,
			Notes:     optional("Order placed"),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusTransitions.WithLabelValues("", string(domain.StatusPending)).Inc()
	events.PublishAsync(s.events, s.logger, eventTopic, events.NewEvent("order.created", o.ID, map[string]any{
		"client_id":    o.ClientID,
		"lta_id":       ltaID,
		"total_amount": o.TotalAmount,
		"currency":     o.Currency,
		"items":        len(o.Items),
	}))
	s.notifier.NotifyAsync(ctx, clientID, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeOrderCreated,
		Title:      "Order placed",
		Message:    fmt.Sprintf("Your order %s has been received.", shortRef(o.ID)),
		ActionURL:  orderURL(o.ID),
		ActionType: notificationDomain.ActionViewOrder,
	})
	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeOrderCreated,
		Title:      "New order",
		Message:    fmt.Sprintf("Order %s was placed for %.2f %s.", shortRef(o.ID), o.TotalAmount, o.Currency),
		ActionURL:  "/admin" + orderURL(o.ID),
		ActionType: notificationDomain.ActionViewOrder,
	})

	s.logger.Info("Order created", zap.String("order_id", o.ID.String()), zap.String("client_id", clientID.String()))
	return o, nil
}

func (s *OrderService) ListForClient(ctx context.Context, clientID uuid.UUID, status domain.Status, limit, offset int) ([]domain.Order, int, error) {
	return s.orders.List(ctx, domain.OrderFilter{ClientID: &clientID, Status: status, Limit: limit, Offset: offset})
}

func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	return s.orders.List(ctx, filter)
}

func (s *OrderService) owned(ctx context.Context, clientID, id uuid.UUID) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ClientID != clientID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) detail(ctx context.Context, o *domain.Order, withAdminNotes bool) (*domain.OrderDetail, error) {
	history, err := s.orders.ListHistory(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !withAdminNotes {
		history = domain.ClientTimeline(history)
	}
	mods, err := s.mods.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderDetail{Order: o, History: history, Modifications: mods}, nil
}

// GetForClient returns the client's own order with admin notes removed.
func (s *OrderService) GetForClient(ctx context.Context, clientID, id uuid.UUID) (*domain.OrderDetail, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, o, false)
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, o, true)
}

// commit persists o (already carrying its new status) if the stored status
// is still from, appends entry, and runs within in the same transaction.
func (s *OrderService) commit(ctx context.Context, o *domain.Order, from domain.Status, entry domain.History, within func(ctx context.Context) error) error {
	entry.OrderID = o.ID
	entry.Status = o.Status
	entry.PreviousStatus = &from
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if within != nil {
			if err := within(ctx); err != nil {
				return err
			}
		}
		if err := s.orders.UpdateState(ctx, o, from); err != nil {
			return err
		}
		return s.orders.AppendHistory(ctx, &entry)
	})
}

func (s *OrderService) announce(ctx context.Context, o *domain.Order, from domain.Status, note *notificationDomain.NotificationInput) {
	metrics.OrderStatusTransitions.WithLabelValues(string(from), string(o.Status)).Inc()
	events.PublishAsync(s.events, s.logger, eventTopic, events.NewEvent("order.status_changed", o.ID, map[string]any{
		"client_id": o.ClientID,
		"from":      from,
		"to":        o.Status,
	}))

	if note == nil {
		note = &notificationDomain.NotificationInput{
			Type:    notificationDomain.TypeOrderStatusChanged,
			Title:   "Order status updated",
			Message: fmt.Sprintf("Order %s is now %s.", shortRef(o.ID), strings.ReplaceAll(string(o.Status), "_", " ")),
		}
	}
	note.ActionURL = orderURL(o.ID)
	note.ActionType = notificationDomain.ActionViewOrder
	s.notifier.NotifyAsync(ctx, o.ClientID, *note)
}

// Cancel is the client's cancellation of their own order.
func (s *OrderService) Cancel(ctx context.Context, clientID, id uuid.UUID, reason string) (*domain.Order, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, clientID, reason)
}

func (s *OrderService) cancel(ctx context.Context, o *domain.Order, actor uuid.UUID, reason string) (*domain.Order, error) {
	r := optional(reason)
	if r == nil {
		return nil, domain.ErrReasonRequired
	}
	if !o.Status.CanTransitionTo(domain.StatusCancelled) {
		return nil, domain.ErrInvalidStatusTransition
	}

	from := o.Status
	o.Status = domain.StatusCancelled
	o.CancellationReason = r
	var within func(ctx context.Context) error
	if from == domain.StatusModificationRequested {
		within = func(ctx context.Context) error {
			return s.closePendingModification(ctx, o.ID, actor)
		}
	}
	if err := s.commit(ctx, o, from, domain.History{ChangedBy: actor, Notes: r}, within); err != nil {
		return nil, err
	}
	s.announce(ctx, o, from, nil)
	return o, nil
}

// closePendingModification rejects the request that parked the order, so a
// cancelled order never carries a pending modification.
func (s *OrderService) closePendingModification(ctx context.Context, orderID, actor uuid.UUID) error {
	mods, err := s.mods.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	for i := range mods {
		mod := &mods[i]
		if mod.Status != domain.ModificationPending {
			continue
		}
		mod.Status = domain.ModificationRejected
		mod.ReviewedBy, mod.ReviewedAt = &actor, &now
		mod.AdminResponse = optional("order cancelled")
		if err := s.mods.Review(ctx, mod); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus is an admin transition. Cancelling requires notes, which
// become the cancellation reason.
func (s *OrderService) UpdateStatus(ctx context.Context, adminID, id uuid.UUID, change StatusChange) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.Status == domain.StatusCancelled {
		return s.cancel(ctx, o, adminID, change.Notes)
	}
	if o.Status == domain.StatusModificationRequested {
		return nil, domain.ErrModificationPending
	}
	if change.Status == domain.StatusModificationRequested || !o.Status.CanTransitionTo(change.Status) {
		return nil, domain.ErrInvalidStatusTransition
	}

	from := o.Status
	o.Status = change.Status
	entry := domain.History{ChangedBy: adminID, Notes: optional(change.Notes), IsAdminNote: change.IsAdminNote}
	if err := s.commit(ctx, o, from, entry, nil); err != nil {
		return nil, err
	}
	s.announce(ctx, o, from, nil)
	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)))
	return o, nil
}

// AdminCancel cancels any non-terminal order.
func (s *OrderService) AdminCancel(ctx context.Context, adminID, id uuid.UUID, reason string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, adminID, reason)
}

// RequestModification parks the order in modification_requested until an
// admin reviews the proposed items or cancellation.
func (s *OrderService) RequestModification(ctx context.Context, clientID, id uuid.UUID, in ModificationInput) (*domain.Modification, error) {
	o, err := s.owned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	reason := optional(in.Reason)
	if reason == nil {
		return nil, domain.ErrReasonRequired
	}
	if o.Status == domain.StatusModificationRequested {
		return nil, domain.ErrModificationPending
	}
	if !o.Status.Modifiable() {
		return nil, domain.ErrModificationNotAllowed
	}

	mod := &domain.Modification{
		OrderID:        o.ID,
		RequestedBy:    clientID,
		Type:           in.Type,
		Reason:         *reason,
		PreviousStatus: o.Status,
		Status:         domain.ModificationPending,
	}
	if in.Type == domain.ModificationItems {
		if o.LtaID == nil {
			return nil, domain.ErrLtaUnavailable
		}
		items, _, err := s.priceItems(ctx, clientID, *o.LtaID, in.Items)
		if err != nil {
			return nil, err
		}
		total := items.Total()
		mod.NewItems, mod.NewTotal = &items, &total
	}

	from := o.Status
	o.Status = domain.StatusModificationRequested
	entry := domain.History{ChangedBy: clientID, Notes: optional("Modification requested: " + *reason)}
	err = s.commit(ctx, o, from, entry, func(ctx context.Context) error {
		return s.mods.Create(ctx, mod)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, o, from, nil)
	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeOrderModificationRequested,
		Title:      "Order modification requested",
		Message:    fmt.Sprintf("Order %s: %s", shortRef(o.ID), *reason),
		ActionURL:  "/admin" + orderURL(o.ID),
		ActionType: notificationDomain.ActionViewOrder,
	})
	return mod, nil
}

// ReviewModification applies or discards a pending modification. Approval
// of an items change restores the status the order had before the request;
// rejection always does.
func (s *OrderService) ReviewModification(ctx context.Context, adminID, modID uuid.UUID, approve bool, response string) (*domain.Modification, error) {
	mod, err := s.mods.GetByID(ctx, modID)
	if err != nil {
		return nil, err
	}
	if mod.Status != domain.ModificationPending {
		return nil, domain.ErrModificationReviewed
	}
	o, err := s.orders.GetByID(ctx, mod.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.StatusModificationRequested {
		return nil, domain.ErrInvalidStatusTransition
	}

	from := o.Status
	verdict := "rejected"
	o.Status = mod.PreviousStatus
	if approve {
		verdict = "approved"
		switch mod.Type {
		case domain.ModificationCancel:
			o.Status = domain.StatusCancelled
			o.CancellationReason = &mod.Reason
		case domain.ModificationItems:
			if mod.NewItems != nil && mod.NewTotal != nil {
				o.Items, o.TotalAmount = *mod.NewItems, *mod.NewTotal
			}
		}
	}

	now := s.now().UTC()
	mod.ReviewedBy, mod.ReviewedAt, mod.AdminResponse = &adminID, &now, optional(response)
	mod.Status = domain.ModificationRejected
	if approve {
		mod.Status = domain.ModificationApproved
	}

	notes := "Modification " + verdict
	if mod.AdminResponse != nil {
		notes += ": " + *mod.AdminResponse
	}
	err = s.commit(ctx, o, from, domain.History{ChangedBy: adminID, Notes: &notes}, func(ctx context.Context) error {
		return s.mods.Review(ctx, mod)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, o, from, &notificationDomain.NotificationInput{
		Type:    notificationDomain.TypeOrderModificationReviewed,
		Title:   "Modification " + verdict,
		Message: fmt.Sprintf("Your modification request for order %s was %s.", shortRef(o.ID), verdict),
	})
	return mod, nil
}
