package repl

import (
	"fmt"
	"io"
	"strings"

	"backoffice/internal/app"
	"backoffice/internal/core"
)

func printHeader(out io.Writer, h core.DocumentHeader) {
	fmt.Fprintf(out, "  %-10s %s (%s)\n", "KIND", h.Kind, h.Status)
	fmt.Fprintf(out, "  %-10s %s\n", "REFERENCE", h.ReferenceNo)
	fmt.Fprintf(out, "  %-10s %s\n", "DATE", h.DocumentDate)
	if h.VendorCode != "" {
		split := "CGST+SGST"
		if h.InterState {
			split = "IGST"
		}
		fmt.Fprintf(out, "  %-10s %s (%s)\n", "VENDOR", h.VendorCode, split)
	}
	if h.LocationCode != "" {
		fmt.Fprintf(out, "  %-10s %s\n", "LOCATION", h.LocationCode)
	}
	if h.ParentID != nil {
		fmt.Fprintf(out, "  %-10s %d\n", "PARENT", *h.ParentID)
	}
	if h.BOMProductID != nil {
		fmt.Fprintf(out, "  %-10s %d\n", "PRODUCT", *h.BOMProductID)
	}
}

// printForm prints the rows of the open form followed by its live totals.
func printForm(out io.Writer, form *core.FormSession) {
	lines := form.Lines().Lines()
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 96))
	fmt.Fprintf(out, "  %s %s\n", form.Header.Kind, form.Header.ReferenceNo)
	fmt.Fprintln(out, strings.Repeat("=", 96))
	if len(lines) == 0 {
		fmt.Fprintln(out, "  No rows. Use /add <product> <qty>.")
	} else {
		fmt.Fprintf(out, "  %-3s %-10s %10s %-5s %10s %8s %11s %9s %9s %9s %11s\n",
			"#", "PRODUCT", "QTY", "UOM", "PRICE", "DISC", "TAXABLE", "CGST", "SGST", "IGST", "TOTAL")
		fmt.Fprintln(out, strings.Repeat("-", 96))
		for _, l := range lines {
			fmt.Fprintf(out, "  %-3d %-10s %10s %-5s %10s %8s %11s %9s %9s %9s %11s\n",
				l.LineNumber, l.ProductCode, l.Quantity.String(), l.UOM,
				l.UnitPrice.StringFixed(2), l.Discount.StringFixed(2), l.TaxableValue.StringFixed(2),
				l.CGSTAmount.StringFixed(2), l.SGSTAmount.StringFixed(2), l.IGSTAmount.StringFixed(2),
				l.LineTotal.StringFixed(2))
		}
	}
	printTotals(out, form.Totals())
	if len(lines) > 0 {
		fmt.Fprintf(out, "  Quantities: %s\n", core.FormatRollup(form.Rollup()))
	}
	fmt.Fprintln(out, strings.Repeat("=", 96))
}

func printTotals(out io.Writer, t core.DocumentTotals) {
	fmt.Fprintln(out, strings.Repeat("-", 96))
	fmt.Fprintf(out, "  %-12s %12s\n", "Subtotal", t.Subtotal.StringFixed(2))
	if !t.IGSTTotal.IsZero() {
		fmt.Fprintf(out, "  %-12s %12s\n", "IGST", t.IGSTTotal.StringFixed(2))
	} else {
		fmt.Fprintf(out, "  %-12s %12s\n", "CGST", t.CGSTTotal.StringFixed(2))
		fmt.Fprintf(out, "  %-12s %12s\n", "SGST", t.SGSTTotal.StringFixed(2))
	}
	fmt.Fprintf(out, "  %-12s %12s\n", "Grand total", t.GrandTotal.StringFixed(2))
}

func printDocuments(out io.Writer, result *app.DocumentListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 84))
	fmt.Fprintf(out, "  DOCUMENTS: Company %s\n", result.CompanyCode)
	fmt.Fprintln(out, strings.Repeat("=", 84))
	if len(result.Documents) == 0 {
		fmt.Fprintln(out, "  No documents found.")
		fmt.Fprintln(out, strings.Repeat("=", 84))
		return
	}
	fmt.Fprintf(out, "  %-5s %-8s %-9s %-18s %-14s %-12s %5s %12s\n",
		"ID", "KIND", "STATUS", "NUMBER", "REFERENCE", "DATE", "LINES", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 84))
	for _, d := range result.Documents {
		fmt.Fprintf(out, "  %-5d %-8s %-9s %-18s %-14s %-12s %5d %12s\n",
			d.Header.ID, d.Header.Kind, d.Header.Status, deref(d.Header.DocumentNumber),
			d.Header.ReferenceNo, d.Header.DocumentDate, d.LineCount, d.Totals.GrandTotal.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 84))
}

func printProducts(out io.Writer, result *app.ProductListResult, companyCode string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  PRODUCTS: Company %s\n", companyCode)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Products) == 0 {
		fmt.Fprintln(out, "  No products found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-10s %-28s %-5s %-9s %6s %10s\n", "CODE", "NAME", "UNIT", "HSN", "GST%", "PRICE")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, p := range result.Products {
		fmt.Fprintf(out, "  %-10s %-28s %-5s %-9s %6s %10s\n",
			p.Code, p.Name, p.Unit, p.HSNCode, p.GSTRate.String(), p.UnitPrice.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printVendors(out io.Writer, result *app.VendorsResult, companyCode string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  VENDORS: Company %s\n", companyCode)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Vendors) == 0 {
		fmt.Fprintln(out, "  No vendors found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-8s %-28s %-6s %s\n", "CODE", "NAME", "STATE", "GSTIN")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, v := range result.Vendors {
		fmt.Fprintf(out, "  %-8s %-28s %-6s %s\n", v.Code, v.Name, deref(v.StateCode), deref(v.GSTIN))
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printPurchaseOrders(out io.Writer, result *app.PurchaseOrdersResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintln(out, "  PURCHASE ORDERS")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.PurchaseOrders) == 0 {
		fmt.Fprintln(out, "  No purchase orders found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-5s %-18s %-10s %-8s %-12s %12s\n", "ID", "NUMBER", "STATUS", "VENDOR", "DATE", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, po := range result.PurchaseOrders {
		fmt.Fprintf(out, "  %-5d %-18s %-10s %-8s %-12s %12s\n",
			po.ID, deref(po.PONumber), po.Status, po.VendorCode, po.PODate, po.Totals.GrandTotal.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Document form:")
	fmt.Fprintln(out, "  /new <grn|invoice|bom>             Start a new document")
	fmt.Fprintln(out, "  /open <id>                         Load a saved document into the form")
	fmt.Fprintln(out, "  /header [key=value ...]            Show or set header fields")
	fmt.Fprintln(out, "                                     (ref, date, location, vendor, product, notes)")
	fmt.Fprintln(out, "  /seed <parent-id>                  Fill rows from a PO (GRN) or GRN (invoice)")
	fmt.Fprintln(out, "  /add <product> <qty> [price] [disc] Add a row")
	fmt.Fprintln(out, "  /set <row> <field> <value>         Edit a row (qty, price, disc, cgst, sgst, igst,")
	fmt.Fprintln(out, "                                     uom, desc, batch, serials)")
	fmt.Fprintln(out, "  /rm <row>                          Remove a row")
	fmt.Fprintln(out, "  /lines                             Show rows and totals")
	fmt.Fprintln(out, "  /submit                            Validate and save")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Records:")
	fmt.Fprintln(out, "  /post <id>                         Post a saved document")
	fmt.Fprintln(out, "  /docs [kind] [status]              List documents")
	fmt.Fprintln(out, "  /products                          List products")
	fmt.Fprintln(out, "  /vendors                           List vendors")
	fmt.Fprintln(out, "  /pos [status]                      List purchase orders")
	fmt.Fprintln(out, "  /approve <po-id>                   Approve a purchase order")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  /help                              Show this help")
	fmt.Fprintln(out, "  /exit                              Exit")
}
