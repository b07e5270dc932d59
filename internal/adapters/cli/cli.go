package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"backoffice/internal/app"
	"backoffice/internal/core"
)

// ErrReconcile is returned by the reconcile command when any stored document drifted.
var ErrReconcile = errors.New("stored documents do not reconcile")

const usage = `Available: calc [kind], validate [kind], save [kind], post <id>, show <id>,
           docs [kind] [status], linked <kind> <parent-id>, reconcile, pos [status], approve-po <id>`

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name. Document payloads
// ({"header": {...}, "lines": [...]}) are read as JSON from in.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", usage)
	}
	company, err := svc.LoadDefaultCompany(ctx)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	code := company.CompanyCode

	switch args[0] {
	case "calc", "compute":
		req, err := readDocument(in, code, args[1:])
		if err != nil {
			return err
		}
		result, err := svc.ComputeDocument(ctx, req)
		if err != nil {
			return err
		}
		printComputed(out, result)

	case "validate", "val":
		req, err := readDocument(in, code, args[1:])
		if err != nil {
			return err
		}
		result, err := svc.ValidateDocument(ctx, req)
		if result != nil {
			printComputed(out, result)
		}
		if err != nil {
			if ve, ok := core.AsValidationError(err); ok {
				fmt.Fprintln(out, "Validation failed:")
				for _, m := range ve.Messages {
					fmt.Fprintf(out, "  - %s\n", m)
				}
			}
			return err
		}
		fmt.Fprintln(out, "Document is valid.")

	case "save":
		req, err := readDocument(in, code, args[1:])
		if err != nil {
			return err
		}
		ack, err := svc.SaveDocument(ctx, req)
		if err != nil {
			return err
		}
		return encode(out, ack)

	case "post":
		id, err := intArg(args, 1, "post <document-id>")
		if err != nil {
			return err
		}
		header, err := svc.PostDocument(ctx, code, id)
		if err != nil {
			return err
		}
		number := ""
		if header.DocumentNumber != nil {
			number = *header.DocumentNumber
		}
		fmt.Fprintf(out, "%s %d POSTED. Number: %s\n", header.Kind, header.ID, number)

	case "show":
		id, err := intArg(args, 1, "show <document-id>")
		if err != nil {
			return err
		}
		doc, err := svc.GetDocument(ctx, code, id)
		if err != nil {
			return err
		}
		return encode(out, doc)

	case "docs":
		kind, status := "", ""
		if len(args) > 1 {
			kind = args[1]
		}
		if len(args) > 2 {
			status = args[2]
		}
		result, err := svc.ListDocuments(ctx, code, kind, status)
		if err != nil {
			return err
		}
		printDocuments(out, result.Documents)

	case "linked":
		if len(args) < 3 {
			return errors.New("usage: linked <GRN|INVOICE> <parent-id>")
		}
		parentID, err := intArg(args, 2, "linked <kind> <parent-id>")
		if err != nil {
			return err
		}
		result, err := svc.LinkedItems(ctx, code, core.DocumentKind(strings.ToUpper(args[1])), parentID)
		if err != nil {
			return err
		}
		printComputed(out, result)

	case "reconcile":
		result, err := svc.ReconcileDocuments(ctx, code)
		if err != nil {
			return err
		}
		if len(result.Issues) == 0 {
			fmt.Fprintln(out, "All documents reconcile.")
			return nil
		}
		printIssues(out, result.Issues)
		return fmt.Errorf("%w: %d issue(s)", ErrReconcile, len(result.Issues))

	case "pos":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		result, err := svc.ListPurchaseOrders(ctx, code, status)
		if err != nil {
			return err
		}
		printPurchaseOrders(out, result.PurchaseOrders)

	case "approve-po":
		id, err := intArg(args, 1, "approve-po <po-id>")
		if err != nil {
			return err
		}
		result, err := svc.ApprovePurchaseOrder(ctx, code, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "PO %d APPROVED. Number: %s\n", result.PurchaseOrder.ID, deref(result.PurchaseOrder.PONumber))

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

// readDocument decodes a document payload. An optional kind argument overrides the
// header's kind.
func readDocument(in io.Reader, companyCode string, args []string) (app.DocumentRequest, error) {
	var req app.DocumentRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(args) > 0 {
		req.Header.Kind = core.DocumentKind(args[0])
	}
	req.Header.Kind = core.DocumentKind(strings.ToUpper(string(req.Header.Kind)))
	req.CompanyCode = companyCode
	return req, nil
}

func intArg(args []string, i int, hint string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: %s", hint)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[i])
	}
	return n, nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func printComputed(out io.Writer, result *app.ComputeResult) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tPRODUCT\tQTY\tUOM\tPRICE\tDISC\tTAXABLE\tCGST\tSGST\tIGST\tTOTAL\t")
	for _, l := range result.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			l.LineNumber, l.ProductCode, l.Quantity.String(), l.UOM, l.UnitPrice.StringFixed(2),
			l.Discount.StringFixed(2), l.TaxableValue.StringFixed(2), l.CGSTAmount.StringFixed(2),
			l.SGSTAmount.StringFixed(2), l.IGSTAmount.StringFixed(2), l.LineTotal.StringFixed(2))
	}
	_ = tw.Flush()

	t := result.Totals
	fmt.Fprintf(out, "Subtotal: %s  CGST: %s  SGST: %s  IGST: %s  Tax: %s  Grand total: %s\n",
		t.Subtotal.StringFixed(2), t.CGSTTotal.StringFixed(2), t.SGSTTotal.StringFixed(2),
		t.IGSTTotal.StringFixed(2), t.TotalTax.StringFixed(2), t.GrandTotal.StringFixed(2))
	if result.RollupText != "" {
		fmt.Fprintf(out, "Quantities: %s\n", result.RollupText)
	}
}

func printDocuments(out io.Writer, docs []core.DocumentSummary) {
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tNUMBER\tREFERENCE\tDATE\tLINES\tGRAND TOTAL")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			d.Header.ID, d.Header.Kind, d.Header.Status, deref(d.Header.DocumentNumber),
			d.Header.ReferenceNo, d.Header.DocumentDate, d.LineCount, d.Totals.GrandTotal.StringFixed(2))
	}
	_ = tw.Flush()
}

func printIssues(out io.Writer, issues []core.ReconcileIssue) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tLINE\tFIELD\tSTORED\tCOMPUTED")
	for _, i := range issues {
		line := "-"
		if i.LineNumber > 0 {
			line = strconv.Itoa(i.LineNumber)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i.DocumentID, line, i.Field, i.Stored, i.Computed)
	}
	_ = tw.Flush()
}

func printPurchaseOrders(out io.Writer, pos []core.PurchaseOrder) {
	if len(pos) == 0 {
		fmt.Fprintln(out, "No purchase orders found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tVENDOR\tSTATUS\tDATE\tGRAND TOTAL")
	for _, po := range pos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			po.ID, deref(po.PONumber), po.VendorCode, po.Status, po.PODate, po.Totals.GrandTotal.StringFixed(2))
	}
	_ = tw.Flush()
}
