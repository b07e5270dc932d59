package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrSubmitInFlight is returned when Submit is called while a save is still running.
var ErrSubmitInFlight = errors.New("a save for this document is already in progress")

// Notifier receives user-facing messages (the snackbar of a form).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Loader is shown for the duration of every remote call and always hidden afterwards.
type Loader interface {
	Show()
	Hide()
}

// FormSession is one open document dialog: it owns the header and line list for as long
// as the dialog is open and routes every remote call through the store and catalog.
//
// On any failed call the user is notified, the loader is cleared, and the lines are put
// back to their last known good state so totals never reflect a half-applied result.
type FormSession struct {
	Header DocumentHeader

	lines   *LineList
	store   DocumentStore
	catalog ProductCatalog
	notify  Notifier
	loader  Loader

	mu       sync.Mutex
	inFlight bool
}

// NewFormSession opens an empty form for header.Kind.
func NewFormSession(header DocumentHeader, store DocumentStore, catalog ProductCatalog, notify Notifier, loader Loader) *FormSession {
	if notify == nil {
		notify = nopNotifier{}
	}
	if loader == nil {
		loader = nopLoader{}
	}
	return &FormSession{
		Header:  header,
		lines:   NewLineList(header.Kind, header.InterState),
		store:   store,
		catalog: catalog,
		notify:  notify,
		loader:  loader,
	}
}

// Lines exposes the owned line list for row edits.
func (f *FormSession) Lines() *LineList { return f.lines }

// Totals recomputes the totals from the current rows.
func (f *FormSession) Totals() DocumentTotals { return f.lines.Totals() }

// Rollup recomputes the unit summary from the current rows.
func (f *FormSession) Rollup() map[string]decimal.Decimal { return f.lines.Rollup() }

// Open loads an existing document into the form, replacing header and rows.
// On failure the form is left empty.
func (f *FormSession) Open(ctx context.Context, documentID int) error {
	f.loader.Show()
	defer f.loader.Hide()

	doc, err := f.store.FetchExistingDocument(ctx, f.Header.CompanyID, documentID)
	if err != nil {
		f.lines.Reset(nil)
		f.notify.Error(fmt.Sprintf("Failed to load document: %v", err))
		return err
	}
	f.Header = doc.Header
	f.lines = NewLineList(doc.Header.Kind, doc.Header.InterState)
	f.lines.Reset(doc.Lines)
	return nil
}

// SeedFromParent replaces the rows with the items of a parent document (purchase order
// for a GRN, GRN for an invoice). On failure the previous rows are restored.
func (f *FormSession) SeedFromParent(ctx context.Context, parentID int) error {
	snap := f.lines.snapshot()
	f.loader.Show()
	defer f.loader.Hide()

	items, err := f.store.FetchLinkedItems(ctx, f.Header.CompanyID, f.Header.Kind, parentID)
	if err != nil {
		f.lines.restore(snap)
		f.notify.Error(fmt.Sprintf("Failed to fetch linked items: %v", err))
		return err
	}
	f.Header.ParentID = &parentID
	f.lines.Reset(items)
	return nil
}

// SelectProduct looks up a product and cascades its defaults into the row.
// On failure the row keeps its previous values.
func (f *FormSession) SelectProduct(ctx context.Context, rowID, query string) error {
	f.loader.Show()
	defer f.loader.Hide()

	p, err := f.catalog.LookupProduct(ctx, f.Header.CompanyID, query)
	if err != nil {
		f.notify.Error(fmt.Sprintf("Product lookup failed: %v", err))
		return err
	}
	return f.lines.SelectProduct(rowID, *p)
}

// Submit runs the validation gate and, only if it passes, saves the document.
// A second Submit while one is in flight returns ErrSubmitInFlight without a request.
func (f *FormSession) Submit(ctx context.Context) (*SaveAck, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	f.inFlight = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	if err := ValidateForSubmit(f.Header, f.lines.Lines()); err != nil {
		f.notify.Error(err.Error())
		return nil, err
	}

	f.loader.Show()
	defer f.loader.Hide()

	ack, err := f.store.SaveDocument(ctx, f.Header, f.lines.Inputs())
	if err != nil {
		f.notify.Error(fmt.Sprintf("Failed to save document: %v", err))
		return nil, err
	}
	f.Header.ID = ack.DocumentID
	f.Header.Status = ack.Status
	f.notify.Success(fmt.Sprintf("%s saved", f.Header.Kind))
	return ack, nil
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopLoader struct{}

func (nopLoader) Show() {}
func (nopLoader) Hide() {}
