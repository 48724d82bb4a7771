package billing

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core/transaction"
)

const (
	invoiceDateLayout = "2006-01-02"
	invoiceRule       = "--------------------"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(`LUMINA LMS - INVOICE
{{.Rule}}
Invoice ID: {{.InvoiceID}}
Date: {{.Date}}

Billed To: {{.UserName}}
Item: {{.Description}}
Payment Method: {{.PaymentMethod}}

{{.Rule}}
TOTAL: ${{.Total}}
Status: {{.Status}}
{{.Rule}}

Thank you for learning with Lumina!
`))

type invoiceView struct {
	Rule          string
	InvoiceID     string
	Date          string
	UserName      string
	Description   string
	PaymentMethod string
	Total         string
	Status        string
}

// Invoice renders the plain-text invoice of tx. It depends on nothing but tx.
func Invoice(tx transaction.Transaction) (string, error) {
	view := invoiceView{
		Rule:          invoiceRule,
		InvoiceID:     tx.InvoiceID,
		Date:          tx.Date.UTC().Format(invoiceDateLayout),
		UserName:      tx.UserName,
		Description:   tx.Description,
		PaymentMethod: tx.PaymentMethod,
		Total:         tx.Amount.StringFixed(2),
		Status:        strings.ToUpper(string(tx.Status)),
	}
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, view); err != nil {
		return "", errors.Wrap(err, "rendering invoice")
	}
	return buf.String(), nil
}
