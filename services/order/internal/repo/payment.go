package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/sport_shop/services/order/internal/models"
)

type PaymentOutcome int

const (
	PaymentSucceeded PaymentOutcome = iota + 1
	PaymentFailed
	PaymentRefunded
)

func (o PaymentOutcome) String() string {
	switch o {
	case PaymentSucceeded:
		return "succeeded"
	case PaymentFailed:
		return "failed"
	case PaymentRefunded:
		return "refunded"
	}
	return "unknown"
}

// PaymentUpdate is a verified provider event reduced to what the order engine needs.
// The order is located by OrderID when set, otherwise by PaymentIntentID.
type PaymentUpdate struct {
	EventID         string
	EventType       string
	Outcome         PaymentOutcome
	OrderID         uint
	PaymentIntentID string
}

type PaymentResult struct {
	Duplicate bool
	Order     *models.Order
	From      string
	Changed   bool
}

// ApplyPayment records the event in the processed_events ledger and applies it in
// the same transaction. A replayed event id is reported as Duplicate and changes
// nothing. An event whose order cannot be found is still recorded.
func (r *GormRepo) ApplyPayment(ctx context.Context, u PaymentUpdate) (*PaymentResult, error) {
	var result PaymentResult

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ev := models.ProcessedEvent{ID: u.EventID, Type: u.EventType, ProcessedAt: time.Now().UTC()}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ev)
		if res.Error != nil {
			return fmt.Errorf("record event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			result.Duplicate = true
			return nil
		}

		o, err := findPaymentOrder(tx, u)
		if err != nil || o == nil {
			return err
		}
		result.From = o.Status

		switch u.Outcome {
		case PaymentSucceeded:
			pi := u.PaymentIntentID
			var ref *string
			if pi != "" {
				ref = &pi
			}
			result.Changed, err = moveStatus(tx, o.ID, models.StatusPending, models.StatusProcessing, ref)
		case PaymentFailed, PaymentRefunded:
			result.Changed, err = cancelOrder(tx, o.ID)
		default:
			return fmt.Errorf("unknown payment outcome %d", u.Outcome)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&ev).Update("order_id", o.ID).Error; err != nil {
			return fmt.Errorf("link event: %w", err)
		}
		if err := tx.First(o, o.ID).Error; err != nil {
			return err
		}
		result.Order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func findPaymentOrder(tx *gorm.DB, u PaymentUpdate) (*models.Order, error) {
	var o models.Order
	q := tx.Model(&models.Order{})
	switch {
	case u.OrderID != 0:
		q = q.Where("id = ?", u.OrderID)
	case u.PaymentIntentID != "":
		q = q.Where("payment_intent_id = ?", u.PaymentIntentID)
	default:
		return nil, nil
	}
	if err := q.First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
