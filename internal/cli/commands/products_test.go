package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/manageday-dev/manageday/internal/models"
)

func TestRunProductsUpdate_OverlaysChangedFields(t *testing.T) {
	product := &models.Product{ID: 3, Name: "Widget", Description: "A widget", Price: 9.5, Stock: 12}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/products/3":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(product)
		case r.Method == http.MethodPut && r.URL.Path == "/products/3":
			if err := json.NewDecoder(r.Body).Decode(product); err != nil {
				t.Errorf("bad update body: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(product)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	d, out := newTestDeps(t, server.URL)

	err := runProductsUpdate(d, 3, func(p *models.Product) {
		p.Price = 11.0
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if product.Price != 11.0 {
		t.Errorf("price should be updated, got %v", product.Price)
	}
	if product.Name != "Widget" || product.Stock != 12 {
		t.Errorf("untouched fields must survive the write-back, got %+v", product)
	}
	if !strings.Contains(out.String(), "✓ Updated product Widget (id 3)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
