package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/order/internal/models"
	"github.com/Skotchmaster/sport_shop/services/order/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/order/internal/transport"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"

	minShippingAddress = 10
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req transport.CreateOrderRequest) (*transport.CreatedOrder, error) {
	addr := strings.TrimSpace(req.ShippingAddress)
	if utf8.RuneCountInString(addr) < minShippingAddress {
		return nil, apperr.Validation(apperr.FieldError{
			Field:   "shippingAddress",
			Message: "Shipping address must be at least 10 characters",
		})
	}

	order, err := s.Repo.PlaceOrder(ctx, repo.PlaceOrderInput{UserID: userID, ShippingAddress: addr})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.ID, EventOrderPlaced, map[string]any{
		"orderId":     order.ID,
		"userId":      order.UserID,
		"totalAmount": order.TotalAmount,
		"items":       order.Items,
	})
	return &transport.CreatedOrder{Order: *order, Items: order.Items}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]transport.OrderSummary, error) {
	orders, err := s.Repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []uint
	for _, o := range orders {
		for _, l := range o.Items {
			ids = append(ids, l.ProductID)
		}
	}
	products, err := s.Repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]transport.OrderSummary, 0, len(orders))
	for _, o := range orders {
		items := lineViews(o.Items, products)
		out = append(out, transport.OrderSummary{Order: o, Items: items, ItemsCount: len(items)})
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID uint) (*transport.OrderView, error) {
	if orderID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid order ID is required")
	}

	o, err := s.Repo.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(o.Items))
	for _, l := range o.Items {
		ids = append(ids, l.ProductID)
	}
	products, err := s.Repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &transport.OrderView{Order: *o, Items: lineViews(o.Items, products)}, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, userID string, orderID uint, status string) (*models.Order, error) {
	if orderID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid order ID is required")
	}
	if !models.ValidStatus(status) {
		return nil, apperr.New(apperr.ErrInvalidStatus,
			"Status must be one of: pending, processing, completed, cancelled")
	}

	change, err := s.Repo.UpdateStatus(ctx, userID, orderID, status)
	if err != nil {
		return nil, err
	}

	if change.Changed {
		s.publishStatus(ctx, change.Order, change.From, "user")
	}
	return change.Order, nil
}

func (s *OrderService) publishStatus(ctx context.Context, o *models.Order, from, source string) {
	s.publish(ctx, o.ID, EventOrderStatusChanged, map[string]any{
		"orderId": o.ID,
		"userId":  o.UserID,
		"from":    from,
		"to":      o.Status,
		"source":  source,
	})
}

func (s *OrderService) publish(ctx context.Context, orderID uint, typ string, data any) {
	if s.Events == nil {
		return
	}
	key := strconv.FormatUint(uint64(orderID), 10)
	if err := s.Events.PublishEvent(ctx, mykafka.TopicOrder, key, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("order_event_publish_failed", "type", typ, "order_id", orderID, "error", err)
	}
}

func lineViews(lines []models.OrderLine, products map[uint]models.Product) []transport.OrderLineView {
	out := make([]transport.OrderLineView, 0, len(lines))
	for _, l := range lines {
		v := transport.OrderLineView{
			OrderItem: l,
			Subtotal:  l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		}
		if p, ok := products[l.ProductID]; ok {
			v.Product = &p
		}
		out = append(out, v)
	}
	return out
}
