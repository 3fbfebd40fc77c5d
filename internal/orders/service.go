// Package orders is the order-creation boundary. It re-validates incoming
// payloads independently of the checkout side and persists accepted orders.
package orders

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/checkout"
	"storefront/internal/models"
)

// Service satisfies checkout.OrderClient so the storefront can place orders
// in-process when no remote order service is configured.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

var _ checkout.OrderClient = (*Service)(nil)

// Create validates and stores an order, returning its id.
func (s *Service) Create(ctx context.Context, req checkout.OrderRequest) (models.Order, error) {
	req.FulfillmentType = checkout.FulfillmentType(strings.ToLower(strings.TrimSpace(string(req.FulfillmentType))))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)

	if err := checkout.Validate(req); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		FulfillmentType: string(req.FulfillmentType),
		Customer: models.OrderCustomer{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		Notes:     strings.TrimSpace(req.Notes),
		Items:     make([]models.OrderItem, 0, len(req.Items)),
		Status:    models.OrderStatusPending,
		CreatedAt: s.now(),
	}
	if req.FulfillmentType == checkout.FulfillmentDelivery {
		order.Customer.Address = req.Address
	}

	total := decimal.Zero
	for _, line := range req.Items {
		price := decimal.NewFromFloat(line.Price).Round(2)
		total = total.Add(price)
		order.Items = append(order.Items, models.OrderItem{
			ItemID:   strings.TrimSpace(line.ItemID),
			Name:     strings.TrimSpace(line.Name),
			Quantity: line.Quantity,
			Price:    price.InexactFloat64(),
			Notes:    strings.TrimSpace(line.Notes),
		})
	}
	order.TotalPrice = total.Round(2).InexactFloat64()

	if err := s.store.Insert(ctx, &order); err != nil {
		log.Printf("[ORDER] [ERROR] insert failed: %v", err)
		return models.Order{}, err
	}

	log.Printf("[ORDER] [INFO] order %s created type=%s items=%d total=%.2f",
		order.ID.Hex(), order.FulfillmentType, len(order.Items), order.TotalPrice)
	return order, nil
}

// CreateOrder adapts Create to the checkout boundary: rejections carry the
// validation message, storage failures the generic one.
func (s *Service) CreateOrder(ctx context.Context, req checkout.OrderRequest) (string, error) {
	order, err := s.Create(ctx, req)
	if err == nil {
		return order.ID.Hex(), nil
	}

	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		return "", &checkout.SubmissionError{Message: vErr.Message, Status: http.StatusBadRequest, Err: err}
	}
	return "", &checkout.SubmissionError{Message: checkout.FallbackMessage, Status: http.StatusInternalServerError, Err: err}
}

func (s *Service) List(ctx context.Context, status string, page, limit int64) ([]models.Order, int64, error) {
	return s.store.List(ctx, strings.TrimSpace(status), page, limit)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, oid)
}
