package postgrest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	remotedomain "github.com/Vivianhuwz/cobrancayb/internal/remote/domain"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Table: "debt_records"}, zap.NewNop())
}

func TestFetchAllDecodesRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/debt_records", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"nf": "NF-1",
			"order_number": "2516407",
			"customer_name": "Acme",
			"amount": 1000,
			"order_date": "2025-08-04",
			"credit_days": 30,
			"due_date": "2025-09-03",
			"status": "pending",
			"notes": null,
			"payments": [{"date": "2025-09-01", "amount": 100, "method": "transfer", "remark": ""}],
			"created_at": "2025-08-04T10:00:00Z",
			"updated_at": "2025-09-01T10:00:00Z"
		}]`))
	})

	records, err := client.FetchAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Acme", rec.CustomerName)
	assert.Equal(t, "2516407", rec.OrderNumber)
	assert.Equal(t, "NF-1", rec.InvoiceNumber)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 30, rec.CreditDays)
	assert.Equal(t, caldate.MustParse("03/09/2025"), rec.DueDate)
	assert.Len(t, rec.Payments, 1)
	assert.True(t, rec.Payments[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC), rec.UpdatedAt.UTC())
}

func TestFetchAllCoercesMalformedFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"customer_name": "Acme",
			"amount": "not-a-number",
			"credit_days": "thirty",
			"order_date": "??",
			"payments": "also-not-a-list"
		}]`))
	})

	records, err := client.FetchAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.Amount.IsZero())
	assert.Equal(t, 0, rec.CreditDays)
	assert.True(t, rec.OrderDate.IsZero())
	assert.Empty(t, rec.Payments)
}

func TestSchemaMissingIsStructural(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "PGRST205", "message": "Could not find the table 'public.debt_records' in the schema cache"}`))
	})

	_, err := client.FetchAll(context.Background())
	assert.Error(t, err)
	assert.True(t, remotedomain.IsStructural(err))
}

func TestServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchAll(context.Background())
	assert.Error(t, err)
	assert.False(t, remotedomain.IsStructural(err))
}

func TestReplaceAllDeletesThenInserts(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	})

	records := []*receivabledomain.Record{{
		CustomerName: "Acme",
		Amount:       decimal.NewFromInt(1000),
		CreditDays:   30,
		OrderDate:    caldate.MustParse("04/08/2025"),
		DueDate:      caldate.MustParse("03/09/2025"),
		Status:       receivabledomain.StatusPending,
	}}

	assert.NoError(t, client.ReplaceAll(context.Background(), records))
	assert.Equal(t, []string{
		"DELETE /rest/v1/debt_records?id=neq.0",
		"POST /rest/v1/debt_records",
	}, calls)
}

func TestReplaceAllEmptySetOnlyDeletes(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = w.Write([]byte(`[]`))
	})

	assert.NoError(t, client.ReplaceAll(context.Background(), nil))
	assert.Equal(t, 1, calls)
}
