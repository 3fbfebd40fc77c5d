package checkout

import (
	"context"
	"log"
	"strings"

	"storefront/internal/cart"
)

// OrderClient is the order-creation boundary. Implementations return the new
// order id, or an error whose message can be shown to the customer.
type OrderClient interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

type Submitter struct {
	client OrderClient
}

func NewSubmitter(client OrderClient) *Submitter {
	return &Submitter{client: client}
}

// Prepare validates the cart and contact locally and builds the payload. No
// network call is made.
func (s *Submitter) Prepare(c *cart.Cart, contact Contact) (OrderRequest, error) {
	if c == nil || c.IsEmpty() {
		return OrderRequest{}, &ValidationError{Field: "Items", Message: MsgCartEmpty}
	}

	contact = contact.normalized()
	if err := Validate(contact); err != nil {
		return OrderRequest{}, err
	}
	return BuildRequest(c.Items(), contact), nil
}

// Send hands a prepared payload to the order boundary. Failures come back as
// *SubmissionError.
func (s *Submitter) Send(ctx context.Context, req OrderRequest) (string, error) {
	id, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		subErr := asSubmissionError(err)
		log.Printf("[CHECKOUT] [WARN] order rejected: %v", err)
		return "", subErr
	}
	id = strings.TrimSpace(id)
	if id == "" {
		log.Println("[CHECKOUT] [WARN] order boundary returned an empty id")
		return "", &SubmissionError{Message: FallbackMessage}
	}
	log.Printf("[CHECKOUT] [INFO] order %s placed with %d items", id, len(req.Items))
	return id, nil
}

// Submit validates, sends and clears the cart on success. On any failure the
// cart is left untouched.
func (s *Submitter) Submit(ctx context.Context, c *cart.Cart, contact Contact) (string, error) {
	req, err := s.Prepare(c, contact)
	if err != nil {
		return "", err
	}

	id, err := s.Send(ctx, req)
	if err != nil {
		return "", err
	}
	c.Clear()
	return id, nil
}
