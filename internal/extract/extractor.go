package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/rentwht/internal/model"
)

// amt is the shared amount fragment: digits with optional thousands
// separators and up to 2 fractional digits
const amt = `([0-9][0-9,]*(?:\.\d{1,2})?)`

const cur = `(?:TZS|TSh)?\.?\s*`

// Matcher lists are ordered most specific to most general; the first
// success wins (see FirstMatch).
var (
	baseRentMatchers = []Matcher{
		Pattern(`\bbase\s+rent\b[:\s]*` + cur + amt),
		Pattern(`\brent\s+amount\b[:\s]*` + cur + amt),
		Pattern(`\bsub[\s\-]?total\b[:\s]*` + cur + amt),
	}

	vatMatchers = []Matcher{
		Pattern(`\bVAT\s*(?:@\s*\d+(?:\.\d+)?\s*%)?[:\s]*` + cur + amt),
		Pattern(amt + `\s*(?:TZS|TSh)?\s*VAT\b`),
	}

	totalMatchers = []Matcher{
		Pattern(`\bgrand\s+total\b[:\s]*` + cur + amt),
		Pattern(`\btotal\s+(?:amount|due|payable)\b[:\s]*` + cur + amt),
		Pattern(`\bamount\s+due\b[:\s]*` + cur + amt),
		Pattern(`(?:^|[^-\w])total\b[:\s]*` + cur + amt),
	}

	invoiceNumberMatchers = []Matcher{
		Pattern(`Invoice\s*(?:No|Number|#)\.?[:\s]*([A-Z0-9\-/]+)`),
		Pattern(`\bINV[:\s]*([A-Z0-9\-/]+)`),
	}

	dateMatchers = []Matcher{
		Pattern(`Date[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		Pattern(`(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`),
	}

	periodMatchers = []Matcher{
		Pattern(`(?:Period|Month|For)[:\s]*([A-Za-z]+\s+\d{4})`),
		Pattern(`Rent\s+for[:\s]*([A-Za-z]+\s+\d{4})`),
	}

	descriptionMatchers = []Matcher{
		Pattern(`Description[:\s]*([^\n]+)`),
		PatternGroup(`(?:Office|Shop|Commercial)\s+(?:Rent|Lease)[^\n]*`, 0),
	}

	landlordMatchers = []Matcher{
		Pattern(`(?:Payee|Landlord|Company)[:\s]*([^\n]+)`),
		Pattern(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Ltd|Limited|Company|Co\.))`),
	}

	tinMatchers = []Matcher{
		Pattern(`TIN[:\s]*([0-9][0-9\-]*)`),
		Pattern(`Tax\s+ID[:\s]*([0-9][0-9\-]*)`),
	}

	bankMatchers = []Matcher{
		Pattern(`Bank[:\s]*([^\n]+)`),
	}

	accountMatchers = []Matcher{
		Pattern(`Account(?:\s+(?:No|Number))?\.?[:\s]*([0-9][0-9\-]*)`),
	}

	usdMatchers = []Matcher{
		PatternGroup(`USD\s*[0-9][0-9,]*(?:\.\d{2})?`, 0),
	}
)

// currencyAmount finds amounts carrying an explicit currency token on
// either side, in text order. Used for positional identification.
var currencyAmount = regexp.MustCompile(
	`(?i)(?:TZS|TSh)\.?\s*([0-9][0-9,]*(?:\.\d{2})?)|([0-9][0-9,]*(?:\.\d{2})?)\s*(?:TZS|TSh)\b`)

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2/1/06",
	"2-1-06",
	"2 Jan 2006",
	"2 January 2006",
}

// Extract parses invoice text into a record. Malformed fragments are
// recovered locally: the field is left absent and a warning recorded, the
// rest of the extraction continues. Returned warnings are human-readable.
func Extract(text string) (*model.InvoiceRecord, []string) {
	rec := &model.InvoiceRecord{}
	var warnings []string

	rec.BaseRent, warnings = extractAmount(text, "base_rent", baseRentMatchers, warnings)
	rec.VATAmount, warnings = extractAmount(text, "vat_amount", vatMatchers, warnings)
	rec.TotalAmount, warnings = extractAmount(text, "total_amount", totalMatchers, warnings)

	// Positional fallback over currency-marked amounts, after the labeled
	// patterns: the last amount in the text is the total, the one before
	// it the VAT. Amounts already claimed by a label are not reused, and
	// base rent is never guessed positionally; reconciliation derives it
	// when the other two are present.
	amounts := scanAmounts(text)
	amounts = withoutClaimed(amounts, rec.BaseRent, rec.VATAmount, rec.TotalAmount)
	if !rec.TotalAmount.Known() && len(amounts) >= 2 {
		rec.TotalAmount = model.Extracted(amounts[len(amounts)-1])
	}
	if !rec.VATAmount.Known() && len(amounts) >= 3 {
		rec.VATAmount = model.Extracted(amounts[len(amounts)-2])
	}

	if v, ok := FirstMatch(text, invoiceNumberMatchers); ok {
		rec.InvoiceNumber = v
	}
	if v, ok := FirstMatch(text, dateMatchers); ok {
		if d, err := parseDate(v); err == nil {
			rec.InvoiceDate = d
		} else {
			warnings = append(warnings, model.NewMalformedFieldError("invoice_date", v, err).Error())
		}
	}
	if v, ok := FirstMatch(text, periodMatchers); ok {
		rec.Period = v
	}
	if v, ok := FirstMatch(text, descriptionMatchers); ok {
		rec.Description = v
	}
	if v, ok := FirstMatch(text, landlordMatchers); ok {
		rec.Landlord = v
	}
	if v, ok := FirstMatch(text, tinMatchers); ok {
		if model.ValidTIN(v) {
			rec.LandlordTIN = v
		} else {
			warnings = append(warnings, model.NewMalformedFieldError("landlord_tin", v, nil).Error())
		}
	}
	if v, ok := FirstMatch(text, bankMatchers); ok {
		rec.BankName = v
	}
	if v, ok := FirstMatch(text, accountMatchers); ok {
		rec.AccountNumber = v
	}
	if v, ok := FirstMatch(text, usdMatchers); ok {
		rec.USDNote = v
	}

	return rec, warnings
}

func extractAmount(text, field string, matchers []Matcher, warnings []string) (model.Field, []string) {
	fragment, ok := FirstMatch(text, matchers)
	if !ok {
		return model.Field{}, warnings
	}
	d, err := ParseAmount(fragment)
	if err != nil {
		return model.Field{}, append(warnings,
			model.NewMalformedFieldError(field, fragment, err).Error())
	}
	return model.Extracted(d), warnings
}

// withoutClaimed drops the first occurrence of each labeled value from
// the positional amount list
func withoutClaimed(amounts []decimal.Decimal, claimed ...model.Field) []decimal.Decimal {
	pending := make([]decimal.Decimal, 0, len(claimed))
	for _, f := range claimed {
		if f.Known() {
			pending = append(pending, f.Amount)
		}
	}

	out := amounts[:0]
scan:
	for _, a := range amounts {
		for i, c := range pending {
			if a.Equal(c) {
				pending = append(pending[:i], pending[i+1:]...)
				continue scan
			}
		}
		out = append(out, a)
	}
	return out
}

func scanAmounts(text string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, match := range currencyAmount.FindAllStringSubmatch(text, -1) {
		fragment := match[1]
		if fragment == "" {
			fragment = match[2]
		}
		d, err := ParseAmount(fragment)
		if err != nil {
			continue
		}
		amounts = append(amounts, d)
	}
	return amounts
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, s)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
