package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/core"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestPurchaseOrder_CreateSplitsGSTByVendorState(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewPurchaseOrderService(pool, zerolog.Nop())
	poDate := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	local, err := svc.CreatePO(ctx, 1, "V001", poDate, []core.PurchaseOrderLineInput{
		{ProductCode: "STL-10", Quantity: decimal.NewFromInt(10)},
		{ProductCode: "BLT-M8", Quantity: decimal.NewFromInt(100), UnitCost: decimal.RequireFromString("3.50")},
	}, "")
	if err != nil {
		t.Fatalf("CreatePO local: %v", err)
	}
	if local.InterState {
		t.Error("expected intra-state PO for a vendor in the company's state")
	}
	// 10 x 52.50 = 525.00 and 100 x 3.50 = 350.00; 9% + 9% on each.
	if got := local.Totals.Subtotal.StringFixed(2); got != "875.00" {
		t.Errorf("subtotal: got %s, want 875.00", got)
	}
	if got := local.Totals.CGSTTotal.StringFixed(2); got != "78.75" {
		t.Errorf("cgst: got %s, want 78.75", got)
	}
	if got := local.Totals.GrandTotal.StringFixed(2); got != "1032.50" {
		t.Errorf("grand total: got %s, want 1032.50", got)
	}
	if len(local.Lines) != 2 || local.Lines[0].UOM != "kg" {
		t.Errorf("unexpected lines: %+v", local.Lines)
	}

	remote, err := svc.CreatePO(ctx, 1, "V002", poDate, []core.PurchaseOrderLineInput{
		{ProductCode: "BLT-M8", Quantity: decimal.NewFromInt(100)},
	}, "urgent")
	if err != nil {
		t.Fatalf("CreatePO inter-state: %v", err)
	}
	if !remote.InterState {
		t.Error("expected inter-state PO")
	}
	if got := remote.Totals.IGSTTotal.StringFixed(2); got != "72.00" {
		t.Errorf("igst: got %s, want 72.00", got)
	}
	if !remote.Totals.CGSTTotal.IsZero() {
		t.Errorf("expected no CGST on an inter-state PO, got %s", remote.Totals.CGSTTotal)
	}
}

func TestPurchaseOrder_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewPurchaseOrderService(pool, zerolog.Nop())

	_, err := svc.CreatePO(ctx, 1, "V001", time.Now(), []core.PurchaseOrderLineInput{
		{ProductCode: "", Quantity: decimal.Zero},
	}, "")
	ve, ok := core.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Messages) != 2 {
		t.Errorf("expected 2 messages, got %v", ve.Messages)
	}

	_, err = svc.CreatePO(ctx, 1, "NOPE", time.Now(), []core.PurchaseOrderLineInput{
		{ProductCode: "STL-10", Quantity: decimal.NewFromInt(1)},
	}, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown vendor, got %v", err)
	}
}

func TestPurchaseOrder_ApproveAssignsNumberOnce(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewPurchaseOrderService(pool, zerolog.Nop())
	poDate := time.Date(2027, 2, 10, 0, 0, 0, 0, time.UTC) // FY 2026-27

	po, err := svc.CreatePO(ctx, 1, "V001", poDate, []core.PurchaseOrderLineInput{
		{ProductCode: "STL-10", Quantity: decimal.NewFromInt(1)},
	}, "")
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}

	approved, err := svc.ApprovePO(ctx, 1, po.ID)
	if err != nil {
		t.Fatalf("ApprovePO: %v", err)
	}
	if approved.Status != core.POStatusApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if approved.PONumber == nil || *approved.PONumber != "PO-2026-27-00001" {
		t.Errorf("unexpected PO number %v", approved.PONumber)
	}

	again, err := svc.ApprovePO(ctx, 1, po.ID)
	if err != nil {
		t.Fatalf("second ApprovePO: %v", err)
	}
	if *again.PONumber != *approved.PONumber {
		t.Errorf("re-approval changed number: %s -> %s", *approved.PONumber, *again.PONumber)
	}

	if _, err := svc.ApprovePO(ctx, 2, po.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another company's PO, got %v", err)
	}

	orders, err := svc.GetPOs(ctx, 1, core.POStatusApproved)
	if err != nil {
		t.Fatalf("GetPOs: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 approved PO, got %d", len(orders))
	}
}
