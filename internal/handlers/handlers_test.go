package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
)

type fakeLookup struct {
	items map[string]models.MenuItem
}

func (f fakeLookup) FindBySlug(_ context.Context, slug string) (models.MenuItem, error) {
	item, ok := f.items[slug]
	if !ok {
		return models.MenuItem{}, catalog.ErrNotFound
	}
	return item, nil
}

func (f fakeLookup) List(_ context.Context, filter catalog.ListFilter) ([]models.MenuItem, int64, error) {
	out := make([]models.MenuItem, 0, len(f.items))
	for _, it := range f.items {
		if filter.Category != "" && !it.Category.Has(filter.Category) {
			continue
		}
		out = append(out, it)
	}
	return out, int64(len(out)), nil
}

func (f fakeLookup) Categories(_ context.Context) ([]string, error) {
	return []string{"Bakery", "Coffee"}, nil
}

type recordingClient struct {
	calls int
	last  checkout.OrderRequest
	id    string
	err   error
}

func (r *recordingClient) CreateOrder(_ context.Context, req checkout.OrderRequest) (string, error) {
	r.calls++
	r.last = req
	return r.id, r.err
}

func price(v float64) *float64 { return &v }

func testMenu() fakeLookup {
	return fakeLookup{items: map[string]models.MenuItem{
		"latte": {
			ID:        primitive.NewObjectID(),
			Slug:      "latte",
			Name:      "Latte",
			BasePrice: price(4.50),
			Category:  models.CategoryList{"Coffee"},
			IsActive:  true,
		},
		"pasta": {
			ID:        primitive.NewObjectID(),
			Slug:      "pasta",
			Name:      "Pasta",
			BasePrice: price(7.00),
			IsActive:  true,
		},
		"croissant": {
			ID:          primitive.NewObjectID(),
			Slug:        "croissant",
			Name:        "Croissant",
			BasePrice:   price(4.00),
			SaleEnabled: true,
			SalePrice:   3.50,
			Category:    models.CategoryList{"Bakery"},
			IsActive:    true,
		},
		"cake": {
			ID:           primitive.NewObjectID(),
			Slug:         "cake",
			Name:         "Cake",
			IsMultiPrice: true,
			MultiPrice:   "slice 4 / whole 30",
			IsActive:     true,
		},
	}}
}

func newTestRouter(lookup catalog.Lookup, client checkout.OrderClient, policy cart.MergePolicy) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := session.NewStore(policy, time.Hour)
	r := gin.New()
	r.GET("/menu", GetMenu(lookup))
	r.GET("/menu/categories", GetMenuCategories(lookup))
	r.GET("/menu/:slug", GetMenuItem(lookup))
	r.POST("/menu/:slug/quote", QuoteMenuItem(lookup))

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.CartSession(store, false, 3600))
	cartGroup.GET("", GetCart())
	cartGroup.POST("/items", AddCartItem(lookup))
	cartGroup.DELETE("/items/*key", RemoveCartItem())
	cartGroup.POST("/checkout", Checkout(checkout.NewSubmitter(client), time.Second))
	return r
}

type shopper struct {
	t      *testing.T
	r      *gin.Engine
	cookie *http.Cookie
}

func (s *shopper) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			s.cookie = c
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

type addResponse struct {
	Item lineItemView `json:"item"`
	Cart cartView     `json:"cart"`
}

func TestAddLatteWithExtraShot(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, cart.MergeReplace)}

	w := s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "extraShot": true, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[addResponse](t, w)
	if resp.Item.UnitPrice != 5.30 || resp.Item.FinalLinePrice != 10.60 {
		t.Fatalf("unexpected prices unit=%v line=%v", resp.Item.UnitPrice, resp.Item.FinalLinePrice)
	}
	if !strings.HasSuffix(resp.Item.Key, "|medium|extra-shot") {
		t.Fatalf("unexpected key %q", resp.Item.Key)
	}
	if resp.Cart.Subtotal != 10.60 || len(resp.Cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", resp.Cart)
	}
}

func TestCartPersistsAcrossRequestsWithCookie(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, cart.MergeReplace)}

	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "pasta"})
	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "croissant"})

	w := s.do(http.MethodGet, "/cart", nil)
	view := decode[cartView](t, w)
	if len(view.Items) != 2 || view.Subtotal != 10.50 {
		t.Fatalf("expected two items totalling 10.50, got %+v", view)
	}

	other := &shopper{t: t, r: s.r}
	empty := decode[cartView](t, other.do(http.MethodGet, "/cart", nil))
	if len(empty.Items) != 0 || empty.Subtotal != 0 {
		t.Fatalf("expected a fresh session to have an empty cart, got %+v", empty)
	}
}

func TestAddSameIdentityUsesMergePolicy(t *testing.T) {
	tests := []struct {
		policy cart.MergePolicy
		want   int
	}{
		{cart.MergeReplace, 3},
		{cart.MergeAccumulate, 4},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, tt.policy)}

			s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "quantity": 1})
			resp := decode[addResponse](t, s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "quantity": 3}))

			if len(resp.Cart.Items) != 1 {
				t.Fatalf("expected one entry, got %d", len(resp.Cart.Items))
			}
			if resp.Cart.Items[0].Quantity != tt.want {
				t.Fatalf("expected quantity %d, got %d", tt.want, resp.Cart.Items[0].Quantity)
			}
		})
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, cart.MergeReplace)}

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"unknown item", gin.H{"slug": "mocha"}, http.StatusNotFound},
		{"zero quantity", gin.H{"slug": "latte", "quantity": 0}, http.StatusBadRequest},
		{"quantity above limit", gin.H{"slug": "latte", "quantity": 100}, http.StatusBadRequest},
		{"huge quantity", gin.H{"slug": "latte", "quantity": int64(9223372036854775807)}, http.StatusBadRequest},
		{"bad size", gin.H{"slug": "latte", "size": "venti"}, http.StatusBadRequest},
		{"missing slug", gin.H{"quantity": 1}, http.StatusBadRequest},
		{"multi price", gin.H{"slug": "cake"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/cart/items", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	view := decode[cartView](t, s.do(http.MethodGet, "/cart", nil))
	if len(view.Items) != 0 {
		t.Fatalf("expected rejected adds to leave the cart empty, got %+v", view.Items)
	}
}

func TestAccumulatePastLimitIsRejected(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, cart.MergeAccumulate)}

	w := s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "quantity": 99})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "quantity": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	view := decode[cartView](t, s.do(http.MethodGet, "/cart", nil))
	if len(view.Items) != 1 || view.Items[0].Quantity != 99 {
		t.Fatalf("expected the line to stay at 99, got %+v", view.Items)
	}
	if view.Subtotal != 445.50 {
		t.Fatalf("expected subtotal 445.50, got %v", view.Subtotal)
	}
}

func TestRemoveCartItemByKey(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{id: "x"}, cart.MergeReplace)}

	added := decode[addResponse](t, s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "notes": "half/half"}))
	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "pasta"})

	w := s.do(http.MethodDelete, "/cart/items/"+url.PathEscape(added.Item.Key), nil)
	resp := decode[struct {
		Removed bool     `json:"removed"`
		Cart    cartView `json:"cart"`
	}](t, w)
	if !resp.Removed || len(resp.Cart.Items) != 1 || resp.Cart.Subtotal != 7.00 {
		t.Fatalf("unexpected remove result %+v", resp)
	}

	w = s.do(http.MethodDelete, "/cart/items/"+url.PathEscape("nope|medium"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected removing an absent key to succeed, got %d", w.Code)
	}
	again := decode[struct {
		Removed bool `json:"removed"`
	}](t, w)
	if again.Removed {
		t.Fatal("expected removed=false for an absent key")
	}
}

func TestCheckoutEmptyCartMakesNoCall(t *testing.T) {
	client := &recordingClient{id: "x"}
	s := &shopper{t: t, r: newTestRouter(testMenu(), client, cart.MergeReplace)}

	w := s.do(http.MethodPost, "/cart/checkout", gin.H{"type": "pickup", "name": "Ana", "phone": "555"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["error"] != checkout.MsgCartEmpty {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if client.calls != 0 {
		t.Fatalf("expected no order call, got %d", client.calls)
	}
}

func TestCheckoutDeliveryWithoutAddress(t *testing.T) {
	client := &recordingClient{id: "x"}
	s := &shopper{t: t, r: newTestRouter(testMenu(), client, cart.MergeReplace)}
	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte"})

	w := s.do(http.MethodPost, "/cart/checkout", gin.H{"type": "delivery", "name": "Ana", "phone": "555"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if client.calls != 0 {
		t.Fatalf("expected no order call, got %d", client.calls)
	}
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	client := &recordingClient{id: "ord-42"}
	s := &shopper{t: t, r: newTestRouter(testMenu(), client, cart.MergeReplace)}
	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte", "extraShot": true, "quantity": 2})

	w := s.do(http.MethodPost, "/cart/checkout", gin.H{
		"type":    "pickup",
		"name":    "Ana",
		"phone":   "555",
		"address": "ignored for pickup",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode[map[string]string](t, w); body["orderId"] != "ord-42" {
		t.Fatalf("unexpected body %v", body)
	}
	if client.last.Address != "" {
		t.Fatalf("pickup order must not carry an address, got %q", client.last.Address)
	}
	if len(client.last.Items) != 1 || client.last.Items[0].Price != 10.60 {
		t.Fatalf("unexpected payload items %+v", client.last.Items)
	}

	view := decode[cartView](t, s.do(http.MethodGet, "/cart", nil))
	if len(view.Items) != 0 {
		t.Fatalf("expected cart cleared, got %+v", view.Items)
	}
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	client := &recordingClient{err: &checkout.SubmissionError{Message: "Kitchen is closed", Status: 400}}
	s := &shopper{t: t, r: newTestRouter(testMenu(), client, cart.MergeReplace)}
	s.do(http.MethodPost, "/cart/items", gin.H{"slug": "latte"})

	w := s.do(http.MethodPost, "/cart/checkout", gin.H{"type": "pickup", "name": "Ana", "phone": "555"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["error"] != "Kitchen is closed" {
		t.Fatalf("expected boundary message verbatim, got %q", body["error"])
	}

	view := decode[cartView](t, s.do(http.MethodGet, "/cart", nil))
	if len(view.Items) != 1 {
		t.Fatalf("expected cart preserved, got %+v", view.Items)
	}
}

func TestMenuEndpoints(t *testing.T) {
	r := newTestRouter(testMenu(), &recordingClient{}, cart.MergeReplace)
	s := &shopper{t: t, r: r}

	w := s.do(http.MethodGet, "/menu?category=Coffee", nil)
	if items := decode[[]models.MenuItem](t, w); len(items) != 1 || items[0].Slug != "latte" {
		t.Fatalf("unexpected filtered menu %+v", items)
	}

	w = s.do(http.MethodGet, "/menu?page=1&limit=2", nil)
	paged := decode[struct {
		Data       []models.MenuItem `json:"data"`
		Pagination map[string]int64  `json:"pagination"`
	}](t, w)
	if paged.Pagination["total"] != 4 || paged.Pagination["totalPages"] != 2 {
		t.Fatalf("unexpected pagination %+v", paged.Pagination)
	}

	if w := s.do(http.MethodGet, "/menu?page=0&limit=2", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page=0, got %d", w.Code)
	}

	if cats := decode[[]string](t, s.do(http.MethodGet, "/menu/categories", nil)); len(cats) != 2 {
		t.Fatalf("unexpected categories %v", cats)
	}

	if w := s.do(http.MethodGet, "/menu/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if item := decode[models.MenuItem](t, s.do(http.MethodGet, "/menu/latte", nil)); item.Name != "Latte" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestQuoteUsesSalePrice(t *testing.T) {
	s := &shopper{t: t, r: newTestRouter(testMenu(), &recordingClient{}, cart.MergeReplace)}

	w := s.do(http.MethodPost, "/menu/croissant/quote", gin.H{"oatMilk": true, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	quote := decode[map[string]any](t, w)
	if quote["unitPrice"] != 4.0 || quote["linePrice"] != 8.0 || quote["basePrice"] != 3.5 {
		t.Fatalf("unexpected quote %v", quote)
	}

	view := decode[cartView](t, s.do(http.MethodGet, "/cart", nil))
	if len(view.Items) != 0 {
		t.Fatal("quote must not touch the cart")
	}
}
