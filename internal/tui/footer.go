package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/n1rna/recipe-cli/internal/i18n"
)

// footerWideWidth is the terminal width from which link columns are shown
const footerWideWidth = 80

// FooterSection is a titled column of links
type FooterSection struct {
	Title string
	Links []string
}

// Footer renders the site footer: brand, link columns, legal links,
// copyright and social links
type Footer struct {
	Brand    string
	Sections []FooterSection
	Legal    []string
	Social   []string

	msgs *i18n.Messages
	now  func() time.Time
}

// NewFooter creates the default footer. now supplies the copyright year.
func NewFooter(msgs *i18n.Messages, now func() time.Time) Footer {
	if msgs == nil {
		msgs = i18n.Default()
	}
	if now == nil {
		now = time.Now
	}
	return Footer{
		Brand: "Sitemark",
		Sections: []FooterSection{
			{Title: "Product", Links: []string{"Features", "Testimonials", "Highlights", "Pricing", "FAQs"}},
			{Title: "Company", Links: []string{"About us", "Careers", "Press"}},
			{Title: "Legal", Links: []string{"Terms", "Privacy", "Contact"}},
		},
		Legal:  []string{"Privacy Policy", "Terms of Service"},
		Social: []string{"GitHub", "X", "LinkedIn"},
		msgs:   msgs,
		now:    now,
	}
}

// Copyright returns the copyright line for the current year
func (f Footer) Copyright() string {
	// the year is passed as text so it is not digit-grouped
	return f.msgs.Get(i18n.Copyright, f.Brand, strconv.Itoa(f.now().Year()))
}

// View renders the footer for the given terminal width. Narrow terminals
// get the brand and the bottom bar only.
func (f Footer) View(width int) string {
	var top string
	brand := footerBrandStyle.Render(f.Brand)
	if width >= footerWideWidth {
		columns := []string{brand}
		for _, s := range f.Sections {
			lines := []string{footerHeadingStyle.Render(s.Title)}
			for _, link := range s.Links {
				lines = append(lines, footerLinkStyle.Render(link))
			}
			columns = append(columns, footerColumnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		}
		top = lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	} else {
		top = brand
	}

	legal := footerLinkStyle.Render(strings.Join(f.Legal, " • "))
	bottom := lipgloss.JoinVertical(lipgloss.Left,
		legal,
		footerLinkStyle.Render(f.Copyright()),
		footerLinkStyle.Render(strings.Join(f.Social, "  ")),
	)

	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, top, "", bottom))
}
