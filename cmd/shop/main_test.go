package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/product"
	httpx "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/geocoder89/storefront/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAPI(t *testing.T) string {
	t.Helper()

	products := memory.NewProductsRepo()
	now := time.Now().UTC()
	_, _ = products.Create(context.Background(), product.Product{
		ID:           "11111111-1111-1111-1111-111111111111",
		Name:         "Desk Lamp",
		Price:        decimal.RequireFromString("10.00"),
		CountInStock: 4,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	hasher := security.NewHasher(bcrypt.MinCost)
	svc := auth.NewService(memory.NewAccountsRepo(), auth.NewManager("shop-test-secret", time.Hour), hasher)
	router := httpx.NewRouter(nil, httpx.Deps{
		Config:   config.Config{Env: "test"},
		Auth:     svc,
		Products: products,
		Cache:    cache.NewMemoryProductCache(time.Minute),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(io.Reader, io.Writer) (string, error) { return pw, nil }
	t.Cleanup(func() { readPassword = orig })
}

func TestProductsCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-a", newAPI(t), "products"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out.String(), "Desk Lamp") || !strings.Contains(out.String(), "1 of 1 products") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestBuyRegistersAndChecksOut(t *testing.T) {
	stubPassword(t, "secret123")

	var out bytes.Buffer
	args := []string{
		"-a", newAPI(t),
		"-email", "jane@example.com",
		"-name", "Jane",
		"-register",
		"-checkout-delay", "0s",
		"buy", "11111111-1111-1111-1111-111111111111:2",
	}
	if err := run(context.Background(), args, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"Signed in as Jane <jane@example.com>",
		"Tax 1.40  Total 21.40",
		"Paid 21.40 for 2 items",
		"[success] Order placed successfully!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestBuyRejectsBadInput(t *testing.T) {
	stubPassword(t, "secret123")
	api := newAPI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", []string{"-a", api}},
		{"unknown command", []string{"-a", api, "sell"}},
		{"missing email", []string{"-a", api, "buy", "x"}},
		{"wrong password", []string{"-a", api, "-email", "nobody@example.com", "buy", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), tt.args, strings.NewReader(""), &out); err == nil {
				t.Fatalf("expected error, output:\n%s", out.String())
			}
		})
	}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		in      string
		id      string
		qty     int
		wantErr bool
	}{
		{in: "abc", id: "abc", qty: 1},
		{in: "abc:3", id: "abc", qty: 3},
		{in: "abc:0", wantErr: true},
		{in: "abc:x", wantErr: true},
		{in: ":2", wantErr: true},
	}

	for _, tt := range tests {
		id, qty, err := parseItem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseItem(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && (id != tt.id || qty != tt.qty) {
			t.Fatalf("parseItem(%q) = %q, %d", tt.in, id, qty)
		}
	}
}

func TestReadPasswordFromPipe(t *testing.T) {
	var prompt bytes.Buffer
	pw, err := readPassword(strings.NewReader("hunter22\n"), &prompt)
	if err != nil || pw != "hunter22" {
		t.Fatalf("got %q, %v", pw, err)
	}
	if prompt.String() != "Password: " {
		t.Fatalf("unexpected prompt %q", prompt.String())
	}
}
