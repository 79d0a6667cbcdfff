package mail

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"spendtrack/internal/core"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 20px; font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #f3f4f6;">
    <table role="presentation" style="max-width: 640px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; border-collapse: collapse; width: 100%;">
        <tr>
            <td style="padding: 24px; background-color: #1f2937; border-radius: 8px 8px 0 0;">
                <h1 style="margin: 0; color: #ffffff; font-size: 22px;">{{.Title}}</h1>
                <p style="margin: 8px 0 0 0; color: #9ca3af; font-size: 14px;">{{.Period}}</p>
            </td>
        </tr>
        <tr>
            <td style="padding: 24px;">
                <table style="width: 100%; border-collapse: collapse; margin-bottom: 24px;">
                    <tr>
                        <td style="padding: 8px 0; color: #4b5563;">Income</td>
                        <td style="padding: 8px 0; text-align: right; color: #059669; font-weight: 600;">{{.Income}}</td>
                    </tr>
                    <tr>
                        <td style="padding: 8px 0; color: #4b5563;">Expenses</td>
                        <td style="padding: 8px 0; text-align: right; color: #dc2626; font-weight: 600;">{{.Expenses}}</td>
                    </tr>
                    <tr>
                        <td style="padding: 8px 0; color: #1f2937; border-top: 1px solid #e5e7eb; font-weight: 600;">Net</td>
                        <td style="padding: 8px 0; text-align: right; border-top: 1px solid #e5e7eb; font-weight: 600;">{{.Net}}</td>
                    </tr>
                </table>
                {{if .Categories}}
                <h2 style="margin: 0 0 12px 0; color: #1f2937; font-size: 16px;">Spending by category</h2>
                <table style="width: 100%; border-collapse: collapse; margin-bottom: 24px;">
                    {{range .Categories}}
                    <tr>
                        <td style="padding: 6px 0; color: #4b5563; border-bottom: 1px solid #f3f4f6;">{{.Name}}</td>
                        <td style="padding: 6px 0; text-align: right; color: #1f2937; border-bottom: 1px solid #f3f4f6;">{{.Amount}}</td>
                    </tr>
                    {{end}}
                </table>
                {{end}}
                <p style="margin: 0; color: #6b7280; font-size: 13px;">{{.Count}} transactions in this period.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`))

type categoryLine struct {
	Name   string
	Amount string
}

type summaryData struct {
	Title      string
	Period     string
	Income     string
	Expenses   string
	Net        string
	Categories []categoryLine
	Count      int
}

// renderSummaryBody builds the HTML body for a summary email.
func renderSummaryBody(req SummaryRequest) (string, error) {
	symbol := req.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}

	spending := core.ExpensesByCategory(req.Transactions)
	names := make([]string, 0, len(spending))
	for name := range spending {
		names = append(names, name)
	}
	// Largest spend first.
	sort.Slice(names, func(i, j int) bool {
		if spending[names[i]].Cents != spending[names[j]].Cents {
			return spending[names[i]].Cents > spending[names[j]].Cents
		}
		return names[i] < names[j]
	})
	categories := make([]categoryLine, 0, len(names))
	for _, name := range names {
		categories = append(categories, categoryLine{Name: name, Amount: spending[name].Format(symbol)})
	}

	data := summaryData{
		Title:      "Spending Summary",
		Period:     fmt.Sprintf("%s to %s", req.Start.FormatLong(), req.End.FormatLong()),
		Income:     core.TotalIncomeOnly(req.Transactions).Format(symbol),
		Expenses:   core.TotalExpensesOnly(req.Transactions).Format(symbol),
		Net:        core.TotalAmount(req.Transactions).Format(symbol),
		Categories: categories,
		Count:      len(req.Transactions),
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render summary body: %w", err)
	}
	return buf.String(), nil
}

// renderCSVAttachment builds the CSV listing attached to reports.
func renderCSVAttachment(txns []core.Transaction) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write([]string{"Date", "Amount", "Category", "Description"})
	for _, t := range txns {
		w.Write([]string{t.Date.String(), fmt.Sprintf("%.2f", t.Amount.Float()), t.Category, t.Description})
	}
	w.Flush()
	return b.String()
}
