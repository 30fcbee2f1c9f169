package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/ui/output"
	"go.trai.ch/modcache/internal/ui/style"
)

type printer struct {
	w io.Writer
	r *lipgloss.Renderer

	ok   lipgloss.Style
	bad  lipgloss.Style
	warn lipgloss.Style
	dim  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := output.Renderer(w, output.ColorProfile())
	return &printer{
		w:    w,
		r:    r,
		ok:   r.NewStyle().Foreground(style.Green),
		bad:  r.NewStyle().Foreground(style.Red),
		warn: r.NewStyle().Foreground(style.Yellow),
		dim:  r.NewStyle().Foreground(style.Slate),
	}
}

func (p *printer) field(key, value string) {
	_, _ = fmt.Fprintf(p.w, "    %-7s %s\n", key+":", value)
}

func (p *printer) warnings(warnings []domain.Warning) {
	for _, w := range warnings {
		_, _ = fmt.Fprintf(p.w, "    %s %s\n", p.warn.Render(style.Warning), w.Text)
	}
}

func (p *printer) result(res app.Result) {
	m := res.Resolution.Module
	if m == nil {
		_, _ = fmt.Fprintf(p.w, "%s %s\n", p.bad.Render(style.Cross), res.Specifier)
		p.warnings(res.Resolution.Warnings)
		return
	}

	_, _ = fmt.Fprintf(p.w, "%s %s %s %s\n",
		p.ok.Render(style.Check), res.Specifier, p.dim.Render(style.Arrow), domain.Href(m.URL))
	p.field("kind", p.r.NewStyle().Foreground(style.KindColor(m.Kind)).Render(m.Kind.String()))
	if m.CachePath != "" {
		p.field("path", m.CachePath)
	}
	if m.ExpectedHash != "" {
		p.field("hash", m.ExpectedHash)
	}
	if m.Loader != "" {
		p.field("loader", string(m.Loader))
	}
	p.warnings(res.Resolution.Warnings)
}

func (p *printer) verify(report *app.VerifyReport) {
	for _, href := range report.Outdated {
		_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.bad.Render(style.Cross), href, p.bad.Render("outdated"))
	}
	for _, href := range report.Missing {
		_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.dim.Render(style.Circle), href, p.dim.Render("not cached"))
	}

	icon := p.ok.Render(style.Check)
	if !report.OK() {
		icon = p.bad.Render(style.Cross)
	}
	_, _ = fmt.Fprintf(p.w, "%s checked %d, outdated %d, missing %d\n",
		icon, report.Checked, len(report.Outdated), len(report.Missing))
}

type resultJSON struct {
	Specifier    string   `json:"specifier"`
	URL          string   `json:"url,omitempty"`
	Kind         string   `json:"kind,omitempty"`
	CachePath    string   `json:"cachePath,omitempty"`
	ExpectedHash string   `json:"expectedHash,omitempty"`
	Loader       string   `json:"loader,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func writeJSON(w io.Writer, results []app.Result) error {
	out := make([]resultJSON, 0, len(results))
	for _, res := range results {
		r := resultJSON{Specifier: res.Specifier}
		if m := res.Resolution.Module; m != nil {
			r.URL = domain.Href(m.URL)
			r.Kind = m.Kind.String()
			r.CachePath = m.CachePath
			r.ExpectedHash = m.ExpectedHash
			r.Loader = string(m.Loader)
		}
		for _, w := range res.Resolution.Warnings {
			r.Warnings = append(r.Warnings, w.Text)
		}
		out = append(out, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
