package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace/internal/domain"
	"marketplace/internal/events"
	applog "marketplace/internal/log"
	"marketplace/internal/pricing"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

// OrderSink captures a priced order. The repository implementation stores it
// and takes the units out of stock atomically.
type OrderSink interface {
	Place(ctx context.Context, o *domain.Order) error
}

type OrderService struct {
	Carts   *CartService
	Sink    OrderSink
	Orders  *repos.OrderRepo
	Machine *domain.StatusMachine
	Events  events.Publisher
}

func NewOrderService(carts *CartService, sink OrderSink, orders *repos.OrderRepo,
	machine *domain.StatusMachine, pub events.Publisher) *OrderService {
	if machine == nil {
		machine = domain.NewStatusMachine(nil)
	}
	return &OrderService{Carts: carts, Sink: sink, Orders: orders, Machine: machine, Events: pub}
}

type CheckoutInput struct {
	Lines   []pricing.Line `json:"lines"`
	Contact domain.Contact `json:"contact"`
}

// Checkout prices the lines (the session cart when none are given) and
// hands the order to the sink. Lines whose product is gone are dropped.
func (s *OrderService) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (domain.Order, error) {
	contact, err := validate.Contact(in.Contact)
	if err != nil {
		return domain.Order{}, err
	}
	lines := in.Lines
	fromSession := len(lines) == 0
	if fromSession && sessionID != "" {
		if lines, err = s.Carts.Lines(ctx, sessionID); err != nil {
			return domain.Order{}, err
		}
	}
	quote, err := s.Carts.Quote(ctx, lines)
	if err != nil {
		return domain.Order{}, err
	}
	if len(quote.Lines) == 0 {
		return domain.Order{}, domain.Invalidf("cart is empty")
	}

	o := domain.Order{
		ID:      uuid.NewString(),
		Contact: contact,
		Items:   make([]domain.OrderItem, 0, len(quote.Lines)),
		Total:   quote.Total,
		Status:  domain.StatusPending,
	}
	for _, l := range quote.Lines {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: l.ProductID, Title: l.Title, Quantity: l.Quantity,
			UnitPrice: l.UnitPrice, LineTotal: l.LineTotal,
		})
	}
	if err := s.Sink.Place(ctx, &o); err != nil {
		if errors.Is(err, repos.ErrInsufficientStock) {
			return domain.Order{}, domain.Conflictf("%v", err)
		}
		return domain.Order{}, err
	}
	if fromSession && sessionID != "" {
		if err := s.Carts.Clear(ctx, sessionID); err != nil {
			applog.Base().WithFields(logrus.Fields{
				"order_id": o.ID, "err": err.Error(),
			}).Warn("cart.clear_failed")
		}
	}
	events.Emit(ctx, s.Events, events.New(events.OrderPlaced, map[string]any{
		"id": o.ID, "total": o.Total, "items": len(o.Items),
	}))
	return o, nil
}

func (s *OrderService) List(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(ctx, limit)
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, notFound(err, "order")
	}
	return o, nil
}

type StatusChange struct {
	Status  string `json:"status"`
	Confirm bool   `json:"confirm"`
}

// SetStatus moves an order. A move outside the transition table needs
// Confirm; the returned flag reports such an override.
func (s *OrderService) SetStatus(ctx context.Context, id string, in StatusChange) (domain.Order, bool, error) {
	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return domain.Order{}, false, err
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, false, err
	}
	override, err := s.Machine.Check(o.Status, to, in.Confirm)
	if err != nil {
		return domain.Order{}, false, err
	}
	if o.Status != to {
		if err := s.Orders.UpdateStatus(ctx, id, to); err != nil {
			return domain.Order{}, false, notFound(err, "order")
		}
		events.Emit(ctx, s.Events, events.New(events.OrderStatus, map[string]any{
			"id": id, "from": o.Status, "to": to, "override": override,
		}))
	}
	o, err = s.Get(ctx, id)
	return o, override, err
}
