package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	doc     *Document
	linked  []LineItem
	err     error
	saves   int
	saved   []LineInput
	release chan struct{}
	entered chan struct{}
}

func (f *fakeStore) FetchLinkedItems(ctx context.Context, companyID int, kind DocumentKind, parentID int) ([]LineItem, error) {
	return f.linked, f.err
}

func (f *fakeStore) FetchExistingDocument(ctx context.Context, companyID, documentID int) (*Document, error) {
	return f.doc, f.err
}

func (f *fakeStore) SaveDocument(ctx context.Context, header DocumentHeader, lines []LineInput) (*SaveAck, error) {
	f.saves++
	f.saved = lines
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &SaveAck{DocumentID: 42, Status: DocumentStatusDraft, LineCount: len(lines)}, nil
}

type fakeCatalog struct {
	product *Product
	err     error
}

func (f fakeCatalog) LookupProduct(ctx context.Context, companyID int, query string) (*Product, error) {
	return f.product, f.err
}

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	shown     int
	hidden    int
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown++
}

func (r *recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hidden++
}

func newSession(store *fakeStore, catalog ProductCatalog) (*FormSession, *recorder) {
	rec := &recorder{}
	return NewFormSession(validGRNHeader(), store, catalog, rec, rec), rec
}

func TestFormSession_SubmitBlockedByValidation(t *testing.T) {
	store := &fakeStore{}
	fs, rec := newSession(store, nil)
	fs.Lines().AddInput(LineInput{ProductCode: "P1", Quantity: "-1", UnitPrice: "10"})

	_, err := fs.Submit(context.Background())
	_, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, 0, store.saves, "no save request may be issued")
	assert.Equal(t, []string{"Row 1: quantity must not be negative"}, rec.errors)
	assert.Equal(t, 0, rec.shown)
}

func TestFormSession_SubmitSaves(t *testing.T) {
	store := &fakeStore{}
	fs, rec := newSession(store, nil)
	fs.Lines().AddInput(validLine())

	ack, err := fs.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, ack.DocumentID)
	assert.Equal(t, 42, fs.Header.ID)
	assert.Len(t, store.saved, 1)
	assert.Equal(t, []string{"GRN saved"}, rec.successes)
	assert.Equal(t, rec.shown, rec.hidden)
}

func TestFormSession_SubmitFailureKeepsLinesAndClearsLoader(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	fs, rec := newSession(store, nil)
	fs.Lines().AddInput(validLine())

	_, err := fs.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, fs.Lines().Len())
	assert.Equal(t, 1, rec.shown)
	assert.Equal(t, 1, rec.hidden)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "connection refused")
}

func TestFormSession_SubmitInFlight(t *testing.T) {
	store := &fakeStore{release: make(chan struct{}), entered: make(chan struct{})}
	fs, _ := newSession(store, nil)
	fs.Lines().AddInput(validLine())

	done := make(chan error, 1)
	go func() {
		_, err := fs.Submit(context.Background())
		done <- err
	}()
	<-store.entered

	_, err := fs.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(store.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.saves)
}

func TestFormSession_SeedFromParentFailureRestoresRows(t *testing.T) {
	store := &fakeStore{err: errors.New("timeout")}
	fs, rec := newSession(store, nil)
	id := fs.Lines().AddInput(validLine())
	before := fs.Totals()

	err := fs.SeedFromParent(context.Background(), 9)
	require.Error(t, err)
	_, ok := fs.Lines().Row(id)
	assert.True(t, ok)
	assert.True(t, before.GrandTotal.Equal(fs.Totals().GrandTotal))
	assert.Nil(t, fs.Header.ParentID)
	assert.Equal(t, 1, rec.hidden)
}

func TestFormSession_SeedFromParent(t *testing.T) {
	linked := BuildLines(KindGRN, []LineInput{validLine(), validLine()})
	store := &fakeStore{linked: linked}
	fs, _ := newSession(store, nil)
	fs.Lines().Add()

	require.NoError(t, fs.SeedFromParent(context.Background(), 9))
	assert.Equal(t, 2, fs.Lines().Len())
	assert.Equal(t, "472.00", fs.Totals().GrandTotal.StringFixed(2))
	require.NotNil(t, fs.Header.ParentID)
	assert.Equal(t, 9, *fs.Header.ParentID)
}

func TestFormSession_OpenFailureLeavesEmptyForm(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	fs, rec := newSession(store, nil)
	fs.Lines().AddInput(validLine())

	require.Error(t, fs.Open(context.Background(), 5))
	assert.Equal(t, 0, fs.Lines().Len())
	assert.Equal(t, "0.00", fs.Totals().GrandTotal.StringFixed(2))
	assert.Len(t, rec.errors, 1)
}

func TestFormSession_Open(t *testing.T) {
	h := validGRNHeader()
	h.ID = 5
	doc := &Document{Header: h, Lines: BuildLines(KindGRN, []LineInput{validLine()})}
	fs, _ := newSession(&fakeStore{doc: doc}, nil)

	require.NoError(t, fs.Open(context.Background(), 5))
	assert.Equal(t, 5, fs.Header.ID)
	assert.Equal(t, "236.00", fs.Totals().GrandTotal.StringFixed(2))
}

func TestFormSession_SelectProduct(t *testing.T) {
	p := &Product{ID: 3, Code: "P3", Name: "Bolt", UnitPrice: d("4"), Unit: "pcs", GSTRate: d("18")}
	fs, _ := newSession(&fakeStore{}, fakeCatalog{product: p})
	id := fs.Lines().AddInput(LineInput{Quantity: "10"})

	require.NoError(t, fs.SelectProduct(context.Background(), id, "P3"))
	row, _ := fs.Lines().Row(id)
	assert.Equal(t, "47.20", row.LineTotal.StringFixed(2))

	fs.catalog = fakeCatalog{err: ErrNotFound}
	require.Error(t, fs.SelectProduct(context.Background(), id, "nope"))
	row, _ = fs.Lines().Row(id)
	assert.Equal(t, 3, row.ProductID)
}
