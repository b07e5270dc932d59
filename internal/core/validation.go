package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError carries every message produced by the submit gate.
// Callers show it as a single notification; no save request is issued.
type ValidationError struct {
	Messages []string `json:"messages"`
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Messages = append(e.Messages, fmt.Sprintf(format, args...))
}

// AsValidationError unwraps err into a *ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var validate = validator.New()

// Header rules per document kind. Field names are mapped to labels in headerLabels.
type grnHeaderRules struct {
	ReferenceNo  string `validate:"required"`
	VendorCode   string `validate:"required"`
	LocationCode string `validate:"required"`
	DocumentDate string `validate:"required,datetime=2006-01-02"`
}

type invoiceHeaderRules struct {
	ReferenceNo  string `validate:"required"`
	VendorCode   string `validate:"required"`
	DocumentDate string `validate:"required,datetime=2006-01-02"`
}

type bomHeaderRules struct {
	ReferenceNo  string `validate:"required"`
	BOMProductID int    `validate:"required"`
	DocumentDate string `validate:"required,datetime=2006-01-02"`
}

var headerLabels = map[string]string{
	"ReferenceNo":  "Document number",
	"VendorCode":   "Vendor",
	"LocationCode": "Location",
	"DocumentDate": "Document date",
	"BOMProductID": "BOM product",
}

func headerRules(h DocumentHeader) any {
	ref := strings.TrimSpace(h.ReferenceNo)
	date := strings.TrimSpace(h.DocumentDate)
	switch h.Kind {
	case KindGRN:
		return grnHeaderRules{ReferenceNo: ref, VendorCode: strings.TrimSpace(h.VendorCode),
			LocationCode: strings.TrimSpace(h.LocationCode), DocumentDate: date}
	case KindInvoice:
		return invoiceHeaderRules{ReferenceNo: ref, VendorCode: strings.TrimSpace(h.VendorCode), DocumentDate: date}
	case KindBOM:
		r := bomHeaderRules{ReferenceNo: ref, DocumentDate: date}
		if h.BOMProductID != nil {
			r.BOMProductID = *h.BOMProductID
		}
		return r
	}
	return nil
}

func (e *ValidationError) checkHeader(h DocumentHeader) {
	rules := headerRules(h)
	if rules == nil {
		e.add("Unknown document kind %q", h.Kind)
		return
	}
	err := validate.Struct(rules)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		e.add("Invalid header: %v", err)
		return
	}
	for _, fe := range fieldErrs {
		label := headerLabels[fe.Field()]
		switch fe.Tag() {
		case "datetime":
			e.add("%s must be a date in YYYY-MM-DD format", label)
		default:
			e.add("%s is required", label)
		}
	}
}

// ValidateForSubmit is the pre-submit gate. It checks the header and every line and
// returns nil or a *ValidationError holding all problems found, one message per issue.
func ValidateForSubmit(header DocumentHeader, lines []LineItem) error {
	ve := &ValidationError{}
	ve.checkHeader(header)

	if len(lines) == 0 {
		ve.add("At least one line item is required")
	}

	for i, l := range lines {
		ve.checkLine(i+1, l)
	}

	if header.Kind == KindInvoice && len(lines) > 0 {
		if !Aggregate(lines).GrandTotal.IsPositive() {
			ve.add("Grand total must be greater than zero")
		}
	}

	if len(ve.Messages) > 0 {
		return ve
	}
	return nil
}

func (e *ValidationError) checkLine(row int, l LineItem) {
	if l.ProductID <= 0 && l.ProductCode == "" {
		e.add("Row %d: product is required", row)
	}

	inputs := []struct {
		name  string
		value decimal.Decimal
	}{
		{"quantity", l.Quantity},
		{"unit price", l.UnitPrice},
		{"discount", l.Discount},
		{"CGST %", l.CGSTPercent},
		{"SGST %", l.SGSTPercent},
		{"IGST %", l.IGSTPercent},
	}
	inputsOK := true
	for _, f := range inputs {
		if f.value.IsNegative() {
			e.add("Row %d: %s must not be negative", row, f.name)
			inputsOK = false
		}
	}

	// Derived amounts can only go negative on their own when the discount exceeds
	// quantity × price; report that once instead of once per tax bucket.
	if inputsOK && l.TaxableValue.IsNegative() {
		e.add("Row %d: taxable value must not be negative (discount exceeds amount)", row)
	}

	if l.IsSerialNumberApplicable {
		n := CountSerialNumbers(l.SerialNumbers)
		if !decimal.NewFromInt(int64(n)).Equal(l.Quantity) {
			e.add("Row %d: %d serial number(s) entered but %s received", row, n, l.Quantity.String())
		}
	}
}

// CountSerialNumbers counts the distinct non-blank comma-separated tokens in s.
func CountSerialNumbers(s string) int {
	seen := make(map[string]struct{})
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		seen[tok] = struct{}{}
	}
	return len(seen)
}
