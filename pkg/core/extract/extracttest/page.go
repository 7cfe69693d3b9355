// Package extracttest renders synthetic statement pages in the provider's
// row-group layout, for tests that should not depend on a live page.
package extracttest

import (
	"fmt"
	"html"
	"strings"

	"statement_scraper/pkg/core/statement"
)

// Item is one line item of a synthetic page. Values line up with the
// header cells after the first one (TTM included for income and cash flow).
type Item struct {
	Label  string
	Values []string
}

// Page describes a statement page.
type Page struct {
	Kind    statement.Kind
	Note    string
	Periods []string
	Items   []Item
}

// Headers returns the header-row texts the page renders.
func (p Page) Headers() []string {
	headers := []string{"Breakdown"}
	if p.Kind.HeaderLabelColumns() == 2 {
		headers = append(headers, "TTM")
	}
	return append(headers, p.Periods...)
}

// HTML renders the page.
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<html><body><section>")
	if p.Note != "" {
		fmt.Fprintf(&b, `<div class="C($tertiaryColor)"><span class="Fz(xs)">%s</span></div>`, html.EscapeString(p.Note))
	}
	b.WriteString(`<div class="D(tbl)"><div class="D(tbhg)">`)
	b.WriteString(`<div class="D(tbr) C($primaryColor)">`)
	for _, h := range p.Headers() {
		fmt.Fprintf(&b, `<div class="D(tbc)"><span>%s</span></div>`, html.EscapeString(h))
	}
	b.WriteString(`</div></div><div class="D(tbrg)">`)
	for _, it := range p.Items {
		b.WriteString(ItemHTML(it))
	}
	b.WriteString("</div></div></section></body></html>")
	return b.String()
}

// ItemHTML renders one line-item row-group: a label cell wrapping two
// structural divs (expand control and label holder), then one value cell per
// value.
func ItemHTML(it Item) string {
	var b strings.Builder
	b.WriteString(`<div class="D(tbr) fi-row">`)
	fmt.Fprintf(&b, `<div class="D(tbc) Ta(start)"><div class="D(ib)"><button class="tgglBtn"></button>`+
		`<div class="rw-expnded"><span class="Va(m)">%s</span></div></div></div>`, html.EscapeString(it.Label))
	for _, v := range it.Values {
		fmt.Fprintf(&b, `<div class="Ta(c) D(tbc)"><span>%s</span></div>`, html.EscapeString(v))
	}
	b.WriteString(`</div>`)
	return b.String()
}
