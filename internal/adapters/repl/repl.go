package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"backoffice/internal/app"
	"backoffice/internal/core"
)

var errExit = errors.New("exit")

// session is the REPL state: the active company and the open form, if any.
type session struct {
	ctx     context.Context
	svc     app.ApplicationService
	out     io.Writer
	company *core.Company
	form    *core.FormSession
}

// Run starts the interactive REPL loop. It reads slash commands from reader and edits
// one document form at a time; totals are reprinted after every change.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) error {
	company, err := svc.LoadDefaultCompany(ctx)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}

	s := &session{ctx: ctx, svc: svc, out: out, company: company}
	fmt.Fprintln(out, "Purchasing documents")
	fmt.Fprintf(out, "Company: %s (%s), state %s\n", company.CompanyCode, company.Name, company.StateCode)
	fmt.Fprintln(out, "Type /new grn|invoice|bom to start a document, or /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if err := s.dispatch(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func (s *session) dispatch(input string) error {
	if !strings.HasPrefix(input, "/") {
		return errors.New("commands start with / (type /help)")
	}
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	code := s.company.CompanyCode

	switch cmd {
	case "new":
		if len(args) < 1 {
			return errors.New("usage: /new <grn|invoice|bom>")
		}
		form, err := s.svc.OpenForm(s.ctx, code, core.DocumentKind(strings.ToUpper(args[0])), s, s)
		if err != nil {
			return err
		}
		s.form = form
		fmt.Fprintf(s.out, "New %s dated %s. Set the header with /header, add rows with /add.\n",
			form.Header.Kind, form.Header.DocumentDate)

	case "open":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		id, err := intArg(args, 0, "/open <document-id>")
		if err != nil {
			return err
		}
		// Form failures are reported through the notifier.
		if err := form.Open(s.ctx, id); err != nil {
			return nil
		}
		printForm(s.out, form)

	case "header", "hdr":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			printHeader(s.out, form.Header)
			return nil
		}
		for _, kv := range args {
			if err := s.setHeader(form, kv); err != nil {
				return err
			}
		}
		printHeader(s.out, form.Header)

	case "seed":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		id, err := intArg(args, 0, "/seed <parent-id>")
		if err != nil {
			return err
		}
		if err := form.SeedFromParent(s.ctx, id); err != nil {
			return nil
		}
		printForm(s.out, form)

	case "add":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return errors.New("usage: /add <product> <qty> [unit-price] [discount]")
		}
		rowID := form.Lines().Add()
		if err := form.SelectProduct(s.ctx, rowID, args[0]); err != nil {
			_ = form.Lines().Remove(rowID)
			return nil
		}
		if err := form.Lines().Update(rowID, func(in *core.LineInput) {
			in.Quantity = args[1]
			if len(args) > 2 {
				in.UnitPrice = args[2]
			}
			if len(args) > 3 {
				in.Discount = args[3]
			}
		}); err != nil {
			return err
		}
		printForm(s.out, form)

	case "set":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return errors.New("usage: /set <row> <field> <value>")
		}
		rowID, err := s.rowID(form, args[0])
		if err != nil {
			return err
		}
		if err := setLineField(form.Lines(), rowID, strings.ToLower(args[1]), strings.Join(args[2:], " ")); err != nil {
			return err
		}
		printForm(s.out, form)

	case "rm", "remove":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		if len(args) < 1 {
			return errors.New("usage: /rm <row>")
		}
		rowID, err := s.rowID(form, args[0])
		if err != nil {
			return err
		}
		if err := form.Lines().Remove(rowID); err != nil {
			return err
		}
		printForm(s.out, form)

	case "lines", "ls":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		printForm(s.out, form)

	case "submit", "save":
		form, err := s.requireForm()
		if err != nil {
			return err
		}
		ack, err := form.Submit(s.ctx)
		if errors.Is(err, core.ErrSubmitInFlight) {
			return err
		}
		if err != nil {
			return nil
		}
		fmt.Fprintf(s.out, "Saved as document %d (%s), %d line(s), grand total %s.\n",
			ack.DocumentID, ack.Status, ack.LineCount, ack.Totals.GrandTotal.StringFixed(2))
		fmt.Fprintf(s.out, "Use /post %d to assign a document number.\n", ack.DocumentID)

	case "post":
		id, err := intArg(args, 0, "/post <document-id>")
		if err != nil {
			return err
		}
		header, err := s.svc.PostDocument(s.ctx, code, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s %d POSTED. Number: %s\n", header.Kind, header.ID, deref(header.DocumentNumber))

	case "docs":
		kind, status := "", ""
		if len(args) > 0 {
			kind = args[0]
		}
		if len(args) > 1 {
			status = args[1]
		}
		result, err := s.svc.ListDocuments(s.ctx, code, kind, status)
		if err != nil {
			return err
		}
		printDocuments(s.out, result)

	case "products":
		result, err := s.svc.ListProducts(s.ctx, code)
		if err != nil {
			return err
		}
		printProducts(s.out, result, code)

	case "vendors":
		result, err := s.svc.ListVendors(s.ctx, code)
		if err != nil {
			return err
		}
		printVendors(s.out, result, code)

	case "pos":
		status := ""
		if len(args) > 0 {
			status = args[0]
		}
		result, err := s.svc.ListPurchaseOrders(s.ctx, code, status)
		if err != nil {
			return err
		}
		printPurchaseOrders(s.out, result)

	case "approve":
		id, err := intArg(args, 0, "/approve <po-id>")
		if err != nil {
			return err
		}
		result, err := s.svc.ApprovePurchaseOrder(s.ctx, code, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "PO %d APPROVED. Number: %s\n", result.PurchaseOrder.ID, deref(result.PurchaseOrder.PONumber))

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// Success and Error make the session the form's notifier.
func (s *session) Success(msg string) { fmt.Fprintf(s.out, "[ok] %s\n", msg) }
func (s *session) Error(msg string)   { fmt.Fprintf(s.out, "[error] %s\n", msg) }

// Show and Hide make the session the form's loader.
func (s *session) Show() { fmt.Fprint(s.out, "... ") }
func (s *session) Hide() {}

func (s *session) requireForm() (*core.FormSession, error) {
	if s.form == nil {
		return nil, errors.New("no open document (use /new grn|invoice|bom)")
	}
	return s.form, nil
}

// rowID maps a 1-based row number as displayed to the row's stable id.
func (s *session) rowID(form *core.FormSession, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	lines := form.Lines().Lines()
	if err != nil || n < 1 || n > len(lines) {
		return "", fmt.Errorf("no row %q (have %d)", arg, len(lines))
	}
	return lines[n-1].RowID, nil
}

// setHeader applies one key=value pair to the form header. Setting the vendor also
// decides the GST split for rows added afterwards.
func (s *session) setHeader(form *core.FormSession, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", kv)
	}
	switch strings.ToLower(key) {
	case "ref", "reference":
		form.Header.ReferenceNo = value
	case "date":
		form.Header.DocumentDate = value
	case "location", "loc":
		form.Header.LocationCode = value
	case "notes":
		form.Header.Notes = value
	case "vendor":
		result, err := s.svc.GetVendor(s.ctx, s.company.CompanyCode, value)
		if err != nil {
			return err
		}
		form.Header.VendorCode = result.Vendor.Code
		form.Header.InterState = result.Vendor.IsInterState(s.company.StateCode)
		form.Lines().SetInterState(form.Header.InterState)
	case "product", "bom-product":
		p, err := s.svc.LookupProduct(s.ctx, s.company.CompanyCode, value)
		if err != nil {
			return err
		}
		form.Header.BOMProductID = &p.ID
	default:
		return fmt.Errorf("unknown header field %q (ref, date, location, vendor, product, notes)", key)
	}
	return nil
}

func setLineField(lines *core.LineList, rowID, field, value string) error {
	return lines.Update(rowID, func(in *core.LineInput) {
		switch field {
		case "qty", "quantity":
			in.Quantity = value
		case "price", "rate":
			in.UnitPrice = value
		case "disc", "discount":
			in.Discount = value
		case "cgst":
			in.CGSTPercent = value
		case "sgst":
			in.SGSTPercent = value
		case "igst":
			in.IGSTPercent = value
		case "uom", "unit":
			in.UOM = value
		case "desc", "description":
			in.Description = value
		case "batch":
			in.BatchNumber = value
		case "serials":
			in.IsSerialNumberApplicable = true
			in.SerialNumbers = value
		}
	})
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

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
