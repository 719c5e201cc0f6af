// Package merge combines a local and a remote record set into one
// authoritative set, preserving the union of payment history.
package merge

import (
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/identity"
	"github.com/Vivianhuwz/cobrancayb/internal/ledger"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

// DuplicateKey reports two records on the same side sharing an identity
// key. The first occurrence survives; the report keeps both visible so
// the operator can resolve the conflict instead of losing it silently.
type DuplicateKey struct {
	Side   string `json:"side"` // "local" or "remote"
	Key    string `json:"key"`
	KeptID string `json:"kept_id"`
	DropID string `json:"dropped_id"`
}

// Report summarizes what a merge did.
type Report struct {
	Matched         int            `json:"matched"`
	LocalOnly       int            `json:"local_only"`
	AddedFromRemote int            `json:"added_from_remote"`
	PaymentsDeduped int            `json:"payments_deduped"`
	DuplicateKeys   []DuplicateKey `json:"duplicate_keys,omitempty"`
}

// Result is the merged set plus its report.
type Result struct {
	Records []*domain.Record
	Report  Report
}

// Engine merges record sets. It never errors: malformed fields are
// expected to have been coerced at the transport boundary, and whatever
// remains degrades to zero values in the calculators.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log.Named("merge")}
}

// dedupe collapses same-key records within one side, keeping the first
// occurrence in iteration order and reporting the rest.
func (e *Engine) dedupe(side string, records []*domain.Record, report *Report) ([]*domain.Record, map[string]*domain.Record) {
	out := make([]*domain.Record, 0, len(records))
	byKey := make(map[string]*domain.Record, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		key := identity.RecordKey(rec)
		if kept, ok := byKey[key]; ok {
			dup := DuplicateKey{Side: side, Key: key, KeptID: kept.ID.String(), DropID: rec.ID.String()}
			report.DuplicateKeys = append(report.DuplicateKeys, dup)
			e.log.Warn("duplicate identity key within one side",
				zap.String("side", side),
				zap.String("key", key),
				zap.String("kept_id", dup.KeptID),
				zap.String("dropped_id", dup.DropID),
			)
			continue
		}
		byKey[key] = rec
		out = append(out, rec)
	}
	return out, byKey
}

// Merge combines local set L and remote set R:
//
//  1. Records present on both sides (same identity key) union their
//     payment lists, recompute the paid cache, and take scalar fields
//     from the more recently updated side (remote wins ties).
//  2. Local-only records are kept unchanged (not yet pushed).
//  3. Unconsumed remote records are appended as new local records.
//
// Inputs are not mutated; the result holds fresh copies.
func (e *Engine) Merge(local, remote []*domain.Record) Result {
	var report Report

	localSet, _ := e.dedupe("local", local, &report)
	remoteSet, remoteByKey := e.dedupe("remote", remote, &report)

	out := make([]*domain.Record, 0, len(localSet)+len(remoteSet))
	consumed := make(map[string]bool, len(remoteByKey))

	for _, l := range localSet {
		key := identity.RecordKey(l)
		r, ok := remoteByKey[key]
		if !ok {
			report.LocalOnly++
			out = append(out, l.Clone())
			continue
		}
		consumed[key] = true
		report.Matched++
		out = append(out, e.mergePair(l, r, &report))
	}

	for _, r := range remoteSet {
		if consumed[identity.RecordKey(r)] {
			continue
		}
		report.AddedFromRemote++
		out = append(out, r.Clone())
	}

	return Result{Records: out, Report: report}
}

// mergePair merges one matched local/remote pair.
func (e *Engine) mergePair(l, r *domain.Record, report *Report) *domain.Record {
	// Scalar fields follow the strictly newer edit; absent or equal
	// timestamps default to the remote copy.
	base := r
	other := l
	if l.UpdatedAt.After(r.UpdatedAt) {
		base, other = l, r
	}
	merged := base.Clone()
	merged.Payments = nil

	// A promotion to paid on either side sticks: payments are
	// append-only, so a paid record never becomes less paid.
	if base.Status != domain.StatusPaid && other.Status == domain.StatusPaid {
		merged.Status = domain.StatusPaid
	}

	// Union of both payment histories, deduplicated by fingerprint.
	seen := make(map[string]bool, len(l.Payments)+len(r.Payments))
	for _, side := range [][]domain.Payment{l.Payments, r.Payments} {
		for _, p := range side {
			key := identity.PaymentKey(p)
			if seen[key] {
				report.PaymentsDeduped++
				continue
			}
			seen[key] = true
			merged.Payments = append(merged.Payments, p)
		}
	}

	merged.PaidAmount = ledger.PaidAmount(merged.Payments)
	return merged
}
