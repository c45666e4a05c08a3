package reference

import (
	"regexp"
	"strconv"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

// Placeholder fills panel fields without data.
const Placeholder = "No data available."

// MaxRelated caps the related terms shown in a tooltip.
const MaxRelated = 3

// RelatedSeparator joins related terms.
const RelatedSeparator = " • "

// Tooltip is the hover text of a region.
type Tooltip struct {
	Title   string
	Related []string
	Body    string
}

// Lines returns the non-empty tooltip lines, title first.
func (t Tooltip) Lines() []string {
	lines := []string{t.Title}
	if len(t.Related) > 0 {
		lines = append(lines, strings.Join(t.Related, RelatedSeparator))
	}
	if t.Body != "" {
		lines = append(lines, t.Body)
	}
	return lines
}

// TooltipFor builds the tooltip of base id. Without an entry or a name the
// title is the raw id.
func TooltipFor(base string, e *Entry) Tooltip {
	if e == nil {
		return Tooltip{Title: base}
	}
	t := Tooltip{
		Title:   plain(e.Name),
		Related: related(e),
		Body:    plain(e.Description),
	}
	if t.Title == "" {
		t.Title = base
	}
	return t
}

// related merges groups then keywords, dropping duplicates, blanks and
// the entry name.
func related(e *Entry) []string {
	name := strings.ToLower(e.Name)
	seen := make(map[string]bool)
	var out []string
	for _, list := range []List{e.Groups, e.Keywords} {
		for _, v := range list {
			if v == "" || seen[v] || strings.ToLower(v) == name {
				continue
			}
			seen[v] = true
			out = append(out, v)
			if len(out) == MaxRelated {
				return out
			}
		}
	}
	return out
}

func plain(s string) string {
	return strings.TrimSpace(strip.StripTags(s))
}

// Section is one labelled block of an info panel.
type Section struct {
	Heading string
	Lines   []string
}

// Footnote is a citation referenced from panel text.
type Footnote struct {
	Number   int
	Citation Citation
}

// Panel is the persistent info box for a region.
type Panel struct {
	Title     string
	Sections  []Section
	Footnotes []Footnote
}

// Lines flattens the panel for text rendering.
func (p Panel) Lines() []string {
	lines := []string{p.Title}
	for _, s := range p.Sections {
		lines = append(lines, "", s.Heading+":")
		for _, l := range s.Lines {
			lines = append(lines, "  "+l)
		}
	}
	if len(p.Footnotes) > 0 {
		lines = append(lines, "", "References:")
		for _, f := range p.Footnotes {
			lines = append(lines, "  ["+strconv.Itoa(f.Number)+"] "+f.Citation.String())
		}
	}
	return lines
}

var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// footnoter renumbers [n] markers in order of first use.
type footnoter struct {
	citations []Citation
	numbers   map[int]int
	notes     []Footnote
}

func (f *footnoter) rewrite(s string) string {
	return citationMarker.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || n < 1 || n > len(f.citations) {
			return m
		}
		num, ok := f.numbers[n]
		if !ok {
			num = len(f.notes) + 1
			f.numbers[n] = num
			f.notes = append(f.notes, Footnote{Number: num, Citation: f.citations[n-1]})
		}
		return "[" + strconv.Itoa(num) + "]"
	})
}

func (f *footnoter) lines(list List) []string {
	var out []string
	for _, v := range list {
		if v = plain(v); v != "" {
			out = append(out, f.rewrite(v))
		}
	}
	if len(out) == 0 {
		return []string{Placeholder}
	}
	return out
}

// PanelFor builds the info panel of base id. Missing fields show
// Placeholder; a nil entry uses the raw id as the title.
func PanelFor(base string, e *Entry) Panel {
	if e == nil {
		e = &Entry{}
	}
	f := &footnoter{citations: e.Citations, numbers: make(map[int]int)}

	title := plain(e.Name)
	if title == "" {
		title = base
	}
	desc := List(nil)
	if e.Description != "" {
		desc = List{e.Description}
	}

	return Panel{
		Title: title,
		Sections: []Section{
			{Heading: "Description", Lines: f.lines(desc)},
			{Heading: "Aliases", Lines: f.lines(e.Aliases)},
			{Heading: "Groups", Lines: f.lines(e.Groups)},
			{Heading: "Embryonic origin", Lines: f.lines(e.EmbryonicOrigin)},
			{Heading: "Functions", Lines: f.lines(e.Functions)},
			{Heading: "Connections", Lines: f.lines(e.Connections)},
		},
		Footnotes: f.notes,
	}
}

// Missing returns the panel fields of e that have no data.
func Missing(e *Entry) []string {
	var out []string
	if e.Name == "" {
		out = append(out, "name")
	}
	if strings.TrimSpace(e.Description) == "" {
		out = append(out, "description")
	}
	for _, f := range []struct {
		name string
		list List
	}{
		{"aliases", e.Aliases},
		{"groups", e.Groups},
		{"embryonic_origin", e.EmbryonicOrigin},
		{"functions", e.Functions},
		{"connections", e.Connections},
	} {
		if len(f.list) == 0 {
			out = append(out, f.name)
		}
	}
	return out
}
