package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
)

var ErrSubmissionInFlight = errors.New("an order submission is already in progress")

// Session owns one customer's cart. Every cart operation runs under mu.
type Session struct {
	ID string

	mu       sync.Mutex
	cart     *cart.Cart
	inFlight bool
	lastSeen time.Time
}

func newSession(id string, policy cart.MergePolicy, now time.Time) *Session {
	return &Session{ID: id, cart: cart.New(policy), lastSeen: now}
}

// Do runs fn with exclusive access to the cart.
func (s *Session) Do(fn func(c *cart.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

// View is Do for readers that also need the submission state; both are read
// under the same lock.
func (s *Session) View(fn func(c *cart.Cart, submitting bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart, s.inFlight)
}

// Submit places the cart as an order. Only one submission may be outstanding
// per session; the lock is released while the order boundary is called.
// On success only the ordered lines leave the cart, so anything added while
// the order was outstanding is kept.
func (s *Session) Submit(ctx context.Context, sub *checkout.Submitter, contact checkout.Contact) (string, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	req, err := sub.Prepare(s.cart, contact)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	ordered := s.cart.Items()
	s.inFlight = true
	s.mu.Unlock()

	id, err := sub.Send(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return "", err
	}
	if left := s.cart.Settle(ordered); left > 0 {
		log.Printf("[CART] [INFO] session=%s order=%s kept %d lines added or changed during checkout", s.ID, id, left)
	}
	return id, nil
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
