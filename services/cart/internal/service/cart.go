package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/models"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/transport"
)

const (
	EventItemAdded   = "cart_item_added"
	EventItemUpdated = "cart_item_updated"
	EventItemRemoved = "cart_item_removed"
	EventCleared     = "cart_cleared"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// GetCart returns the user's cart with live prices. Lines whose product has been
// removed from the catalog are skipped.
func (s *CartService) GetCart(ctx context.Context, userID string) (*transport.CartView, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, products, err := s.Repo.ListLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	view := &transport.CartView{Cart: *cart, Items: make([]transport.LineView, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Items = append(view.Items, transport.LineView{CartItem: l, Product: p, Subtotal: sub})
		view.Total = view.Total.Add(sub)
	}
	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, req transport.AddItemRequest) (*transport.AddItemResult, error) {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	var fields []apperr.FieldError
	if req.ProductID == 0 {
		fields = append(fields, apperr.FieldError{Field: "productId", Message: "Valid product ID is required"})
	}
	if qty < 1 {
		fields = append(fields, apperr.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	cart, line, err := s.Repo.AddLine(ctx, userID, models.CartLine{
		ProductID: req.ProductID,
		Quantity:  qty,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, EventItemAdded, line)
	return &transport.AddItemResult{Cart: *cart, Item: *line}, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID string, lineID uint, quantity int) (*models.CartLine, error) {
	if lineID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid item ID is required")
	}
	if quantity < 1 {
		return nil, apperr.Validation(apperr.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}

	line, err := s.Repo.UpdateLineQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, EventItemUpdated, line)
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, lineID uint) error {
	if lineID == 0 {
		return apperr.New(apperr.ErrValidation, "Valid item ID is required")
	}

	line, err := s.Repo.RemoveLine(ctx, userID, lineID)
	if err != nil {
		return err
	}

	s.publish(ctx, userID, EventItemRemoved, line)
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	removed, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return err
	}

	s.publish(ctx, userID, EventCleared, map[string]any{"userId": userID, "removed": removed})
	return nil
}

func (s *CartService) publish(ctx context.Context, userID, typ string, data any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicCart, userID, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("cart_event_publish_failed", "type", typ, "error", err)
	}
}
