package decompose

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ShayCichocki/dispatch/pkg/models"
)

func TestParseTasks_WellFormedBlocks(t *testing.T) {
	text := `
<task>
<type>formal</type>
<description>Write the formal version</description>
</task>
<task>
<type>casual</type>
<description>Write the casual version</description>
</task>
`

	records := ParseTasks(text)

	want := []models.TaskRecord{
		{Kind: "formal", Description: "Write the formal version"},
		{Kind: "casual", Description: "Write the casual version"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("ParseTasks = %+v, want %+v", records, want)
	}
}

func TestParseTasks_MissingTypeDefaults(t *testing.T) {
	text := `
<task>
<type>formal</type>
<description>A</description>
</task>
<task>
<description>B</description>
</task>
`

	records := ParseTasks(text)

	want := []models.TaskRecord{
		{Kind: "formal", Description: "A"},
		{Kind: models.DefaultKind, Description: "B"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("ParseTasks = %+v, want %+v", records, want)
	}
}

func TestParseTasks_MissingDescriptionDropsBlock(t *testing.T) {
	text := `
<task>
<type>formal</type>
</task>
<task>
<description>kept</description>
</task>
`

	records := ParseTasks(text)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Description != "kept" {
		t.Errorf("Description = %q, want %q", records[0].Description, "kept")
	}
	if got := strings.Count(text, taskOpen); len(records) >= got {
		t.Errorf("output length %d should be less than block-start count %d", len(records), got)
	}
}

func TestParseTasks_UnterminatedBlockDropped(t *testing.T) {
	text := `
<task>
<type>lost</type>
<description>never closed</description>
<task>
<type>ok</type>
<description>well formed</description>
</task>
`

	records := ParseTasks(text)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Kind != "ok" || records[0].Description != "well formed" {
		t.Errorf("record = %+v, want the well-formed block", records[0])
	}
}

func TestParseTasks_TrailingUnterminatedBlockDropped(t *testing.T) {
	text := `
<task>
<description>complete</description>
</task>
<task>
<description>dangling</description>
`

	records := ParseTasks(text)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Description != "complete" {
		t.Errorf("Description = %q, want %q", records[0].Description, "complete")
	}
}

func TestParseTasks_EmptyAndMalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n  ",
		"no markers at all",
		"</task>\n</task>",
		"<type>orphan</type>\n<description>orphan</description>",
	}
	for _, text := range inputs {
		if records := ParseTasks(text); len(records) != 0 {
			t.Errorf("ParseTasks(%q) = %+v, want no records", text, records)
		}
	}
}

func TestParseTasks_WhitespaceInsignificant(t *testing.T) {
	text := "  <task>  \n\t<type> spaced </type>\n  <description> padded value </description>  \n  </task>  "
	records := ParseTasks(text)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Kind != "spaced" {
		t.Errorf("Kind = %q, want %q", records[0].Kind, "spaced")
	}
	if records[0].Description != "padded value" {
		t.Errorf("Description = %q, want %q", records[0].Description, "padded value")
	}
}

func TestParseTasks_MultiLineValueTruncated(t *testing.T) {
	text := `
<task>
<description>first line only
second line is lost</description>
</task>
`

	records := ParseTasks(text)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Description != "first line only" {
		t.Errorf("Description = %q, want only the marker line's value", records[0].Description)
	}
}

func TestParseTasks_Deterministic(t *testing.T) {
	text := "<task>\n<type>a</type>\n<description>b</description>\n</task>"

	first := ParseTasks(text)
	second := ParseTasks(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ParseTasks not deterministic: %+v vs %+v", first, second)
	}
}
