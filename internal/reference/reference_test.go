package reference

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/neuroview/internal/assets"
)

const doc = `{
  "100": {
    "name": "Hippocampus",
    "description": "  Forms <em>new</em> memories [2].  ",
    "aliases": "Cornu ammonis",
    "groups": ["Limbic system", "hippocampus", "Temporal lobe"],
    "keywords": ["Limbic system", "Memory", "Navigation"],
    "embryonic_origin": "Telencephalon",
    "functions": ["Episodic memory [1]", "Spatial maps [2] [9]"],
    "citations": [
      "Squire 1992",
      {"text": "O'Keefe 1971", "url": "https://example.org/okeefe"}
    ]
  },
  "7": {},
  "8": null
}`

func TestParseAcceptsStringOrArray(t *testing.T) {
	table, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, table, 2, "null entries are dropped")

	e := table["100"]
	require.NotNil(t, e)
	assert.Equal(t, List{"Cornu ammonis"}, e.Aliases)
	assert.Equal(t, List{"Telencephalon"}, e.EmbryonicOrigin)
	require.Len(t, e.Citations, 2)
	assert.Equal(t, Citation{Text: "Squire 1992"}, e.Citations[0])
	assert.Equal(t, "https://example.org/okeefe", e.Citations[1].URL)

	_, err = Parse([]byte(`{"1": {"aliases": 4}}`))
	assert.Error(t, err)
}

func TestTooltipFor(t *testing.T) {
	table, err := Parse([]byte(doc))
	require.NoError(t, err)

	tip := TooltipFor("100", table["100"])
	assert.Equal(t, "Hippocampus", tip.Title)
	assert.Equal(t, []string{"Limbic system", "Temporal lobe", "Memory"}, tip.Related,
		"groups then keywords, de-duplicated, name excluded case-insensitively, capped at three")
	assert.Equal(t, "Forms new memories [2].", tip.Body)
	assert.Equal(t, []string{
		"Hippocampus",
		"Limbic system • Temporal lobe • Memory",
		"Forms new memories [2].",
	}, tip.Lines())

	assert.Equal(t, Tooltip{Title: "42"}, TooltipFor("42", nil), "missing metadata shows the raw id")
	assert.Equal(t, []string{"7"}, TooltipFor("7", table["7"]).Lines())
}

func TestPanelFor(t *testing.T) {
	table, err := Parse([]byte(doc))
	require.NoError(t, err)

	p := PanelFor("100", table["100"])
	assert.Equal(t, "Hippocampus", p.Title)
	require.Len(t, p.Sections, 6)

	byHeading := make(map[string][]string)
	for _, s := range p.Sections {
		byHeading[s.Heading] = s.Lines
	}
	assert.Equal(t, []string{"Forms new memories [1]."}, byHeading["Description"],
		"markers are renumbered in order of first use")
	assert.Equal(t, []string{"Episodic memory [2]", "Spatial maps [1] [9]"}, byHeading["Functions"],
		"out-of-range markers are left as they are")
	assert.Equal(t, []string{Placeholder}, byHeading["Connections"])

	require.Len(t, p.Footnotes, 2)
	assert.Equal(t, Footnote{Number: 1, Citation: table["100"].Citations[1]}, p.Footnotes[0])
	assert.Equal(t, Footnote{Number: 2, Citation: table["100"].Citations[0]}, p.Footnotes[1])
	assert.Contains(t, p.Lines(), "  [1] O'Keefe 1971 https://example.org/okeefe")

	empty := PanelFor("55", nil)
	assert.Equal(t, "55", empty.Title)
	for _, s := range empty.Sections {
		assert.Equal(t, []string{Placeholder}, s.Lines, s.Heading)
	}
	assert.Empty(t, empty.Footnotes)
}

func TestMissing(t *testing.T) {
	table, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"connections"}, Missing(table["100"]))
	assert.Len(t, Missing(table["7"]), 7)
}

func TestMergeUpdatesFields(t *testing.T) {
	in := []byte(`{"3": {"name": "Piriform cortex", "extra": 1}, "4": {"name": "Café"}}`)
	out, err := Merge(in, Updates{
		"3": {"description": "Primary olfactory cortex.", "aliases": []any{"Piriform area"}},
	})
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "Piriform cortex", got["3"]["name"])
	assert.Equal(t, float64(1), got["3"]["extra"], "unmodelled fields survive")
	assert.Equal(t, "Primary olfactory cortex.", got["3"]["description"])
	assert.Contains(t, string(out), `"name": "Café"`, "non-ASCII is not escaped")
	assert.Contains(t, string(out), "\n  \"3\": {\n    ", "two-space indent")
	assert.Equal(t, byte('\n'), out[len(out)-1])

	_, err = Merge(in, Updates{"999": {"name": "x"}})
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestMergeKeepsDocumentOrder(t *testing.T) {
	in := "{\n" +
		"  \"2\": {\n" +
		"    \"name\": \"Claustrum\"\n" +
		"  },\n" +
		"  \"10\": {\n" +
		"    \"name\": \"Insula\",\n" +
		"    \"groups\": [\n" +
		"      \"Cortex\"\n" +
		"    ],\n" +
		"    \"aliases\": []\n" +
		"  }\n" +
		"}\n"

	out, err := Merge([]byte(in), Updates{"10": {"name": "Insular cortex"}})
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(in, "Insula\"", "Insular cortex\"", 1), string(out),
		"only the updated value changes")

	out, err = Merge([]byte(in), Updates{"2": {"functions": []any{"salience"}, "description": "Thin sheet."}})
	require.NoError(t, err)
	s := string(out)
	assert.Less(t, strings.Index(s, `"2"`), strings.Index(s, `"10"`), "ids keep document order")
	assert.Less(t, strings.Index(s, `"name": "Claustrum"`), strings.Index(s, `"description"`))
	assert.Less(t, strings.Index(s, `"description"`), strings.Index(s, `"functions"`), "new fields appended by name")

	_, err = Merge([]byte(`[1, 2]`), Updates{"1": {"name": "x"}})
	assert.Error(t, err)

	out, err = Merge([]byte(`{"5": null}`), Updates{"5": {"name": "Fornix"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name": "Fornix"`)
}

func TestStoreLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultName), []byte(doc), 0o644))

	s := NewStore(nil)
	_, ok := s.Lookup("100")
	assert.False(t, ok, "absent before load")
	assert.False(t, s.Loaded())

	require.NoError(t, s.Load(context.Background(), assets.NewDirSource(dir), DefaultName))
	assert.True(t, s.Loaded())
	assert.Equal(t, 2, s.Len())
	e, ok := s.Lookup("100")
	require.True(t, ok)
	assert.Equal(t, "Hippocampus", e.Name)

	err := s.Load(context.Background(), assets.NewDirSource(dir), "missing.json")
	assert.ErrorIs(t, err, assets.ErrNotFound)
	assert.Equal(t, 2, s.Len(), "failed load keeps the table")
}

func TestStoreWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultName)
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"name": "One"}}`), 0o644))

	s := NewStore(nil)
	require.NoError(t, s.Load(context.Background(), assets.NewDirSource(dir), DefaultName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var reloads atomic.Int32
	require.NoError(t, s.Watch(ctx, path, func() { reloads.Add(1) }))

	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"name": "Uno"}, "2": {}}`), 0o644))

	assert.Eventually(t, func() bool {
		e, ok := s.Lookup("1")
		return ok && e.Name == "Uno" && s.Len() == 2 && reloads.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}
