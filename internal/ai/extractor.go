package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"backoffice/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// ExtractedLine is one line item read from a vendor document. Numbers stay as text so
// they flow through the same fail-soft parsing as typed input.
type ExtractedLine struct {
	ProductCode string `json:"product_code" jsonschema_description:"Product code from the catalog, or empty if no catalog entry matches"`
	Description string `json:"description" jsonschema_description:"Item description as printed"`
	UOM         string `json:"uom" jsonschema_description:"Unit of measure, e.g. kg, pcs, ltr"`
	HSNCode     string `json:"hsn_code" jsonschema_description:"HSN or SAC code, empty if not printed"`
	Quantity    string `json:"quantity" jsonschema_description:"Quantity as a plain decimal, e.g. \"12.5\""`
	UnitPrice   string `json:"unit_price" jsonschema_description:"Rate per unit before tax as a plain decimal"`
	Discount    string `json:"discount" jsonschema_description:"Discount amount for the line in rupees, \"0\" if none"`
	GSTPercent  string `json:"gst_percent" jsonschema_description:"Total GST rate in percent (CGST+SGST, or IGST), e.g. \"18\""`
}

// ExtractedDocument is the structured output requested from the model.
type ExtractedDocument struct {
	ReferenceNo  string          `json:"reference_no" jsonschema_description:"Vendor invoice or delivery challan number"`
	VendorName   string          `json:"vendor_name" jsonschema_description:"Supplier name as printed"`
	DocumentDate string          `json:"document_date" jsonschema_description:"Document date as YYYY-MM-DD, empty if absent"`
	Lines        []ExtractedLine `json:"lines"`
}

// LineInputs converts the extracted lines to editable rows, splitting each GST rate
// into CGST+SGST or IGST.
func (d ExtractedDocument) LineInputs(interState bool) []core.LineInput {
	out := make([]core.LineInput, 0, len(d.Lines))
	for _, l := range d.Lines {
		cgst, sgst, igst := core.SplitGST(core.ParseAmount(l.GSTPercent), interState)
		out = append(out, core.LineInput{
			ProductCode: strings.TrimSpace(l.ProductCode),
			Description: strings.TrimSpace(l.Description),
			UOM:         strings.TrimSpace(l.UOM),
			HSNCode:     strings.TrimSpace(l.HSNCode),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			CGSTPercent: cgst.String(),
			SGSTPercent: sgst.String(),
			IGSTPercent: igst.String(),
		})
	}
	return out
}

// LineExtractor reads line items out of free text such as a pasted vendor invoice.
type LineExtractor interface {
	ExtractLines(ctx context.Context, kind core.DocumentKind, text string, catalog string) (*ExtractedDocument, error)
}

type Extractor struct {
	client *openai.Client
}

func NewExtractor(apiKey string) *Extractor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{client: &client}
}

func (e *Extractor) ExtractLines(ctx context.Context, kind core.DocumentKind, text string, catalog string) (*ExtractedDocument, error) {
	prompt := fmt.Sprintf(`You read Indian purchase documents (%s) and extract their line items.
Rules:
1. Use product codes ONLY from the catalog below; leave product_code empty when unsure.
2. Numbers are plain decimals without currency symbols or thousands separators.
3. gst_percent is the total rate: CGST+SGST, or IGST.
4. Do not compute totals; the system recomputes every amount.

Catalog (code | name | unit | gst %%):
%s

Document:
%s`, kind, catalog, text)

	schemaMap, err := schemaFor(ExtractedDocument{})
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchase_document_lines",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Line items extracted from a purchase document"),
				},
			},
		},
	}

	resp, err := e.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var doc ExtractedDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("no line items found in the document")
	}
	return &doc, nil
}

// schemaFor reflects v into the map form the Responses API expects for strict output.
func schemaFor(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
