package store

import (
	"encoding/json"
	"fmt"

	"github.com/pkrasavin/contrario/internal/model"
)

// Records is the typed persistence surface over a Store. One statement
// maps to at most one record of each kind; saving again replaces it.
type Records struct {
	store Store
}

// NewRecords wraps a store.
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// SaveSources persists the source set for its statement.
func (r *Records) SaveSources(set *model.SourceSet) error {
	return r.save(KindSources, set.Statement, set)
}

// LoadSources loads the source set for a statement, if any.
func (r *Records) LoadSources(statement string) (*model.SourceSet, bool, error) {
	var set model.SourceSet
	found, err := r.load(KindSources, statement, &set)
	if !found || err != nil {
		return nil, false, err
	}
	return &set, true, nil
}

// SaveReport persists the implication report for a statement.
func (r *Records) SaveReport(report *model.Report) error {
	return r.save(KindChains, report.Statement, report)
}

// LoadReport loads the implication report for a statement, if any.
func (r *Records) LoadReport(statement string) (*model.Report, bool, error) {
	var report model.Report
	found, err := r.load(KindChains, statement, &report)
	if !found || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

// SaveCounterpoints persists the counterpoint report for a statement.
func (r *Records) SaveCounterpoints(report *model.CounterpointReport) error {
	return r.save(KindCounterpoints, report.Statement, report)
}

// LoadCounterpoints loads the counterpoint report for a statement, if any.
func (r *Records) LoadCounterpoints(statement string) (*model.CounterpointReport, bool, error) {
	var report model.CounterpointReport
	found, err := r.load(KindCounterpoints, statement, &report)
	if !found || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (r *Records) save(kind, statement string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}
	return r.store.Put(Key(kind, statement), data)
}

func (r *Records) load(kind, statement string, v any) (bool, error) {
	data, found := r.store.Get(Key(kind, statement))
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s record: %w", kind, err)
	}
	return true, nil
}
