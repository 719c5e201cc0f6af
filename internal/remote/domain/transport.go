// Package domain defines the remote transport port. The engine only
// needs list and replace over the full record set; anything richer is
// the remote store's concern.
package domain

import (
	"context"
	"errors"
	"fmt"

	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// Transport is the remote boundary. FetchAll and ReplaceAll carry the
// whole set: the dataset is small and owned by a single operator, so
// full-replace replication is deliberately simple.
type Transport interface {
	FetchAll(ctx context.Context) ([]*receivabledomain.Record, error)
	ReplaceAll(ctx context.Context, records []*receivabledomain.Record) error
}

// TransportError distinguishes structural failures (remote schema
// missing, operator must intervene) from transient ones (retryable).
type TransportError struct {
	Code       string
	Message    string
	Structural bool
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("transport: %s (%s)", e.Message, e.Code)
	}
	return "transport: " + e.Message
}

// IsStructural reports whether err is a non-retryable schema failure.
func IsStructural(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Structural
}
