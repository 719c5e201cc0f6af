// Package postgrest implements the remote transport against a
// PostgREST-style REST endpoint (Supabase). Records travel as flat
// snake_case rows with the payment history as a nested JSON array.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	remotedomain "github.com/Vivianhuwz/cobrancayb/internal/remote/domain"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// Config addresses one remote table.
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
}

type Client struct {
	cfg    Config
	log    *zap.Logger
	client *http.Client
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		log:    log.Named("remote.postgrest"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) tableURL(query string) string {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/rest/v1/" + c.cfg.Table
	if query != "" {
		u += "?" + query
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// postgrestError is the error body PostgREST returns on failures.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &remotedomain.TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &remotedomain.TransportError{Message: err.Error()}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	var pe postgrestError
	_ = json.Unmarshal(raw, &pe)
	if pe.Message == "" {
		pe.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return nil, &remotedomain.TransportError{
		Code:       pe.Code,
		Message:    pe.Message,
		Structural: isSchemaMissing(pe),
	}
}

// isSchemaMissing recognizes the "table does not exist" failure, which
// is not retryable: the operator has to create the remote schema first.
func isSchemaMissing(pe postgrestError) bool {
	if pe.Code == "PGRST205" {
		return true
	}
	return strings.Contains(strings.ToLower(pe.Message), "could not find the table")
}

// FetchAll pulls the whole remote record set, newest first.
func (c *Client) FetchAll(ctx context.Context) ([]*receivabledomain.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL("select=*&order=created_at.desc"), nil)
	if err != nil {
		return nil, &remotedomain.TransportError{Message: err.Error()}
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &remotedomain.TransportError{Message: "malformed response: " + err.Error()}
	}

	records := make([]*receivabledomain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeRow(row))
	}
	c.log.Debug("fetched remote records", zap.Int("count", len(records)))
	return records, nil
}

// ReplaceAll clears the remote table and inserts the given set. This is
// the original full-replace replication: delete everything, then bulk
// insert the current local snapshot.
func (c *Client) ReplaceAll(ctx context.Context, records []*receivabledomain.Record) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.tableURL("id=neq.0"), nil)
	if err != nil {
		return &remotedomain.TransportError{Message: err.Error()}
	}
	if _, err := c.do(req); err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, encodeRow(rec))
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return &remotedomain.TransportError{Message: err.Error()}
	}

	req, err = c.newRequest(ctx, http.MethodPost, c.tableURL(""), bytes.NewReader(body))
	if err != nil {
		return &remotedomain.TransportError{Message: err.Error()}
	}
	if _, err := c.do(req); err != nil {
		return err
	}
	c.log.Debug("replaced remote records", zap.Int("count", len(records)))
	return nil
}

func encodeRow(rec *receivabledomain.Record) map[string]any {
	payments := make([]map[string]any, 0, len(rec.Payments))
	for _, p := range rec.Payments {
		payments = append(payments, map[string]any{
			"token":  p.Token,
			"amount": p.Amount.InexactFloat64(),
			"date":   p.Date.ISO(),
			"method": string(p.Method),
			"remark": p.Remark,
		})
	}
	return map[string]any{
		"nf":            nullable(rec.InvoiceNumber),
		"order_number":  nullable(rec.OrderNumber),
		"customer_name": rec.CustomerName,
		"amount":        rec.Amount.InexactFloat64(),
		"order_date":    rec.OrderDate.ISO(),
		"credit_days":   rec.CreditDays,
		"due_date":      rec.DueDate.ISO(),
		"status":        string(rec.Status),
		"notes":         nullable(rec.Notes),
		"paid_amount":   rec.PaidAmount.InexactFloat64(),
		"payments":      payments,
		"archived":      rec.Archived,
		"created_at":    rec.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":    rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// decodeRow maps a remote row onto the record model. All numeric and
// date fields coerce leniently: a malformed remote value degrades to
// zero/empty instead of failing the whole pull.
func decodeRow(row map[string]any) *receivabledomain.Record {
	rec := &receivabledomain.Record{
		InvoiceNumber: cast.ToString(row["nf"]),
		OrderNumber:   cast.ToString(row["order_number"]),
		CustomerName:  cast.ToString(row["customer_name"]),
		Amount:        toDecimal(row["amount"]),
		CreditDays:    cast.ToInt(row["credit_days"]),
		Status:        receivabledomain.Status(cast.ToString(row["status"])),
		Notes:         cast.ToString(row["notes"]),
		Archived:      cast.ToBool(row["archived"]),
		CreatedAt:     toTime(row["created_at"]),
		UpdatedAt:     toTime(row["updated_at"]),
	}
	rec.OrderDate = toDate(row["order_date"])
	rec.DueDate = toDate(row["due_date"])

	if raw, ok := row["payments"].([]any); ok {
		for _, item := range raw {
			pm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			rec.Payments = append(rec.Payments, receivabledomain.Payment{
				Token:  cast.ToString(pm["token"]),
				Amount: toDecimal(pm["amount"]),
				Date:   toDate(pm["date"]),
				Method: receivabledomain.PaymentMethod(cast.ToString(pm["method"])),
				Remark: cast.ToString(pm["remark"]),
			})
		}
	}
	if rec.Payments == nil {
		rec.Payments = []receivabledomain.Payment{}
	}
	rec.PaidAmount = toDecimal(row["paid_amount"])
	return rec
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
