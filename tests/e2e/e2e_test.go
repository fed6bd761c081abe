//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/abdoul9859/techplus/internal/config"
	"github.com/abdoul9859/techplus/internal/infra"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("techplus_test"),
		tcPostgres.WithUsername("techplus"),
		tcPostgres.WithPassword("techplus"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		DefaultTaxRate:     "18",
		CompanyName:        "TechPlus",
		Currency:           "FCFA",
		PDFStoragePath:     t.TempDir(),
		ImportTempPath:     t.TempDir(),
	}

	// NewDatabase runs the migrations
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username:     "admin",
		Email:        "admin@e2e.test",
		PasswordHash: string(hash),
		Role:         "admin",
		IsActive:     true,
	}).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/api/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin123"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) createClient(t *testing.T, name string) uint {
	t.Helper()
	resp := do(t, env.server, "POST", "/api/clients",
		jsonBody(t, map[string]any{"name": name}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ClientID uint `json:"client_id"`
	}
	decodeJSON(t, resp, &body)
	return body.ClientID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Quote → accept → convert → pay → deliver, end to end.
func TestE2E_QuoteToDelivery(t *testing.T) {
	env := setupTestEnv(t)
	clientID := env.createClient(t, "Boutique Médina")

	prodResp := do(t, env.server, "POST", "/api/products",
		jsonBody(t, map[string]any{
			"name":              "Samsung Galaxy A15",
			"category":          "Téléphones",
			"price":             120000,
			"has_unique_serial": true,
			"variants": []map[string]any{
				{"imei_serial": "356938035643801"},
				{"imei_serial": "356938035643802"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
		Variants  []struct {
			VariantID uint `json:"variant_id"`
		} `json:"variants"`
	}
	decodeJSON(t, prodResp, &prod)
	require.Equal(t, 2, prod.Quantity)
	require.Len(t, prod.Variants, 2)

	quoteResp := do(t, env.server, "POST", "/api/quotations",
		jsonBody(t, map[string]any{
			"client_id": clientID,
			"items": []map[string]any{
				{"product_id": prod.ProductID, "product_name": "Samsung Galaxy A15", "quantity": 1, "unit_price": 120000},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, quoteResp.StatusCode)
	var quote struct {
		QuotationID     uint   `json:"quotation_id"`
		QuotationNumber string `json:"quotation_number"`
		Total           string `json:"total"`
	}
	decodeJSON(t, quoteResp, &quote)
	assert.Equal(t, "DEV-0001", quote.QuotationNumber)
	assert.Equal(t, "141600", quote.Total) // 120000 + 18%

	statusResp := do(t, env.server, "PUT", "/api/quotations/"+itoa(quote.QuotationID)+"/status",
		jsonBody(t, map[string]string{"status": "accepted"}), env.token)
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
	statusResp.Body.Close()

	convResp := do(t, env.server, "POST", "/api/quotations/"+itoa(quote.QuotationID)+"/convert", nil, env.token)
	require.Equal(t, http.StatusCreated, convResp.StatusCode)
	var inv struct {
		InvoiceID     uint   `json:"invoice_id"`
		InvoiceNumber string `json:"invoice_number"`
		Total         string `json:"total"`
		Status        string `json:"status"`
	}
	decodeJSON(t, convResp, &inv)
	assert.Equal(t, "FAC-0001", inv.InvoiceNumber)
	assert.Equal(t, quote.Total, inv.Total)

	// conversion consumed one unit from the mirror
	getProd := do(t, env.server, "GET", "/api/products/"+itoa(prod.ProductID), nil, env.token)
	require.Equal(t, http.StatusOK, getProd.StatusCode)
	var after struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, getProd, &after)
	assert.Equal(t, 1, after.Quantity)

	payResp := do(t, env.server, "POST", "/api/invoices/"+itoa(inv.InvoiceID)+"/payments",
		jsonBody(t, map[string]any{"amount": 141600, "payment_method": "especes"}), env.token)
	require.Equal(t, http.StatusCreated, payResp.StatusCode)
	var paid struct {
		Status          string `json:"status"`
		RemainingAmount string `json:"remaining_amount"`
	}
	decodeJSON(t, payResp, &paid)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, "0", paid.RemainingAmount)

	noteResp := do(t, env.server, "POST", "/api/invoices/"+itoa(inv.InvoiceID)+"/delivery-note", nil, env.token)
	require.Equal(t, http.StatusCreated, noteResp.StatusCode)
	var note struct {
		DeliveryNoteID uint   `json:"delivery_note_id"`
		Status         string `json:"status"`
		Items          []struct {
			SerialNumbers []string `json:"serial_numbers"`
		} `json:"items"`
	}
	decodeJSON(t, noteResp, &note)
	assert.Equal(t, "en_preparation", note.Status)
	require.Len(t, note.Items, 1)
	assert.Len(t, note.Items[0].SerialNumbers, 1)

	delivResp := do(t, env.server, "PUT", "/api/delivery-notes/"+itoa(note.DeliveryNoteID)+"/status",
		jsonBody(t, map[string]string{"status": "livré"}), env.token)
	require.Equal(t, http.StatusOK, delivResp.StatusCode)
	var delivered struct {
		Status      string  `json:"status"`
		DeliveredAt *string `json:"delivered_at"`
	}
	decodeJSON(t, delivResp, &delivered)
	assert.Equal(t, "livré", delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)
}

// Two concurrent invoices bind the same unit; the row lock lets exactly one win.
func TestE2E_ConcurrentVariantSale(t *testing.T) {
	env := setupTestEnv(t)
	clientID := env.createClient(t, "Cyber Liberté 6")

	prodResp := do(t, env.server, "POST", "/api/products",
		jsonBody(t, map[string]any{
			"name":              "iPhone 12 occasion",
			"category":          "Téléphones",
			"price":             250000,
			"has_unique_serial": true,
			"variants": []map[string]any{
				{"imei_serial": "013440002445786"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ProductID uint `json:"product_id"`
		Variants  []struct {
			VariantID uint `json:"variant_id"`
		} `json:"variants"`
	}
	decodeJSON(t, prodResp, &prod)
	require.Len(t, prod.Variants, 1)

	body := map[string]any{
		"client_id": clientID,
		"items": []map[string]any{
			{
				"product_id":   prod.ProductID,
				"product_name": "iPhone 12 occasion",
				"quantity":     1,
				"unit_price":   250000,
				"variant_ids":  []uint{prod.Variants[0].VariantID},
			},
		},
	}

	var wg sync.WaitGroup
	statuses := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := do(t, env.server, "POST", "/api/invoices", jsonBody(t, body), env.token)
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "exactly one sale must win the unit")
	assert.Equal(t, 1, conflicts, "the loser must get a conflict")

	// the survivor owns the unit; the mirror is at zero
	getProd := do(t, env.server, "GET", "/api/products/"+itoa(prod.ProductID), nil, env.token)
	require.Equal(t, http.StatusOK, getProd.StatusCode)
	var after struct {
		Quantity int `json:"quantity"`
		Variants []struct {
			IsSold bool `json:"is_sold"`
		} `json:"variants"`
	}
	decodeJSON(t, getProd, &after)
	assert.Equal(t, 0, after.Quantity)
	require.Len(t, after.Variants, 1)
	assert.True(t, after.Variants[0].IsSold)
}

// Cancelling an invoice puts the stock back.
func TestE2E_CancelRestoresStock(t *testing.T) {
	env := setupTestEnv(t)
	clientID := env.createClient(t, "Atelier GSM")

	prodResp := do(t, env.server, "POST", "/api/products",
		jsonBody(t, map[string]any{
			"name":     "Verre trempé universel",
			"category": "Accessoires",
			"price":    2000,
			"quantity": 10,
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ProductID uint `json:"product_id"`
	}
	decodeJSON(t, prodResp, &prod)

	invResp := do(t, env.server, "POST", "/api/invoices",
		jsonBody(t, map[string]any{
			"client_id": clientID,
			"items": []map[string]any{
				{"product_id": prod.ProductID, "product_name": "Verre trempé universel", "quantity": 4, "unit_price": 2000},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, invResp.StatusCode)
	var inv struct {
		InvoiceID uint `json:"invoice_id"`
	}
	decodeJSON(t, invResp, &inv)

	getProd := do(t, env.server, "GET", "/api/products/"+itoa(prod.ProductID), nil, env.token)
	var during struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, getProd, &during)
	require.Equal(t, 6, during.Quantity)

	cancelResp := do(t, env.server, "PUT", "/api/invoices/"+itoa(inv.InvoiceID)+"/status",
		jsonBody(t, map[string]string{"status": "cancelled"}), env.token)
	require.Equal(t, http.StatusOK, cancelResp.StatusCode)
	cancelResp.Body.Close()

	getProd = do(t, env.server, "GET", "/api/products/"+itoa(prod.ProductID), nil, env.token)
	var after struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, getProd, &after)
	assert.Equal(t, 10, after.Quantity)
}

// Editing a variant's attribute replaces the old row instead of stacking a
// second one, and the product-level barcode stays NULL through updates.
func TestE2E_VariantAttributeReplacedOnUpdate(t *testing.T) {
	env := setupTestEnv(t)

	prodResp := do(t, env.server, "POST", "/api/products",
		jsonBody(t, map[string]any{
			"name":              "Tecno Spark 20",
			"category":          "Téléphones",
			"price":             85000,
			"has_unique_serial": true,
			"variants": []map[string]any{
				{
					"imei_serial": "352099001761481",
					"attributes": []map[string]any{
						{"attribute_name": "couleur", "attribute_value": "noir"},
					},
				},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ProductID uint `json:"product_id"`
		Variants  []struct {
			VariantID uint `json:"variant_id"`
		} `json:"variants"`
	}
	decodeJSON(t, prodResp, &prod)
	require.Len(t, prod.Variants, 1)

	updResp := do(t, env.server, "PUT", "/api/products/"+itoa(prod.ProductID),
		jsonBody(t, map[string]any{
			"barcode": "SPARK20-LOT", // has no place on a serialized product
			"variants": []map[string]any{
				{
					"variant_id":  prod.Variants[0].VariantID,
					"imei_serial": "352099001761481",
					"attributes": []map[string]any{
						{"attribute_name": "couleur", "attribute_value": "bleu"},
					},
				},
			},
		}), env.token)
	require.Equal(t, http.StatusOK, updResp.StatusCode)
	var updated struct {
		Barcode  *string `json:"barcode"`
		Variants []struct {
			Attributes []struct {
				AttributeName  string `json:"attribute_name"`
				AttributeValue string `json:"attribute_value"`
			} `json:"attributes"`
		} `json:"variants"`
	}
	decodeJSON(t, updResp, &updated)
	assert.Nil(t, updated.Barcode)
	require.Len(t, updated.Variants, 1)
	require.Len(t, updated.Variants[0].Attributes, 1)
	assert.Equal(t, "bleu", updated.Variants[0].Attributes[0].AttributeValue)
}

// Concurrent creates never share an invoice number and never drive the plain
// counter negative.
func TestE2E_ConcurrentPlainInvoices(t *testing.T) {
	env := setupTestEnv(t)
	clientID := env.createClient(t, "Marché Sandaga")

	prodResp := do(t, env.server, "POST", "/api/products",
		jsonBody(t, map[string]any{
			"name":     "Écouteurs filaires",
			"category": "Accessoires",
			"price":    3000,
			"quantity": 10,
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ProductID uint `json:"product_id"`
	}
	decodeJSON(t, prodResp, &prod)

	createInvoice := func(qty int) (int, string) {
		resp := do(t, env.server, "POST", "/api/invoices",
			jsonBody(t, map[string]any{
				"client_id": clientID,
				"items": []map[string]any{
					{"product_id": prod.ProductID, "product_name": "Écouteurs filaires", "quantity": qty, "unit_price": 3000},
				},
			}), env.token)
		if resp.StatusCode != http.StatusCreated {
			resp.Body.Close()
			return resp.StatusCode, ""
		}
		var inv struct {
			InvoiceNumber string `json:"invoice_number"`
		}
		decodeJSON(t, resp, &inv)
		return http.StatusCreated, inv.InvoiceNumber
	}

	// both must be created, with distinct numbers
	var wg sync.WaitGroup
	statuses := make([]int, 2)
	numbers := make([]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], numbers[i] = createInvoice(3)
		}(i)
	}
	wg.Wait()

	require.Equal(t, []int{http.StatusCreated, http.StatusCreated}, statuses)
	assert.NotEqual(t, numbers[0], numbers[1])
	assert.ElementsMatch(t, []string{"FAC-0001", "FAC-0002"}, numbers)

	// 4 units left; two concurrent sales of 3 cannot both go through
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], numbers[i] = createInvoice(3)
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicts)

	getProd := do(t, env.server, "GET", "/api/products/"+itoa(prod.ProductID), nil, env.token)
	var after struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, getProd, &after)
	assert.Equal(t, 1, after.Quantity)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
