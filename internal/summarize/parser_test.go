package summarize

import (
	"errors"
	"reflect"
	"testing"
)

func TestDelimitedParser(t *testing.T) {
	p := DelimitedParser{}

	t.Run("keywords and narrative", func(t *testing.T) {
		result, err := p.Parse("Keywords: a, b, c\n\nSome narrative text.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(result.Keywords, []string{"a", "b", "c"}) {
			t.Errorf("keywords = %v", result.Keywords)
		}
		if result.Summary != "Some narrative text." {
			t.Errorf("summary = %q", result.Summary)
		}
	})

	t.Run("administrative blocks dropped", func(t *testing.T) {
		result, err := p.Parse("About the Author\n\nBio text.\n\nReal summary.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary != "Real summary." {
			t.Errorf("summary = %q, want %q", result.Summary, "Real summary.")
		}
	})

	t.Run("all labels routed", func(t *testing.T) {
		raw := "Intro paragraph.\n\n" +
			"Glossary: API - application programming interface\n\n" +
			"Citations and References: Smith 2020\n\n" +
			"References: Jones 2019\n\n" +
			"Additional Resources: https://example.com\n\n" +
			"Foreword\nBy somebody famous.\n\n" +
			"Closing paragraph."
		result, err := p.Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary != "Intro paragraph.\nClosing paragraph." {
			t.Errorf("summary = %q", result.Summary)
		}
		if !reflect.DeepEqual(result.Glossary, []string{"API - application programming interface"}) {
			t.Errorf("glossary = %v", result.Glossary)
		}
		if !reflect.DeepEqual(result.References, []string{"Smith 2020", "Jones 2019"}) {
			t.Errorf("references = %v", result.References)
		}
		if !reflect.DeepEqual(result.AdditionalResources, []string{"https://example.com"}) {
			t.Errorf("additional resources = %v", result.AdditionalResources)
		}
	})
}

func TestJSONParser(t *testing.T) {
	p := JSONParser{}

	t.Run("full object", func(t *testing.T) {
		raw := `{"summary":"S","keywords":["k1","k2"],"glossary":["g"],"references":["r"],"additional_resources":["a"]}`
		result, err := p.Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary != "S" || len(result.Keywords) != 2 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("missing keys default to empty", func(t *testing.T) {
		result, err := p.Parse(`{"summary":"just text"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary != "just text" {
			t.Errorf("summary = %q", result.Summary)
		}
		if len(result.Keywords) != 0 || len(result.Glossary) != 0 {
			t.Errorf("expected empty collections: %+v", result)
		}
	})

	t.Run("fenced reply accepted", func(t *testing.T) {
		result, err := p.Parse("```json\n{\"summary\":\"fenced\"}\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary != "fenced" {
			t.Errorf("summary = %q", result.Summary)
		}
	})

	t.Run("invalid JSON is fatal", func(t *testing.T) {
		_, err := p.Parse("A narrative reply, not JSON.")
		var fatal *FatalParseError
		if !errors.As(err, &fatal) {
			t.Fatalf("expected FatalParseError, got %v", err)
		}
	})

	t.Run("schema violation is fatal", func(t *testing.T) {
		_, err := p.Parse(`{"summary":"ok","keywords":"not-an-array"}`)
		var fatal *FatalParseError
		if !errors.As(err, &fatal) {
			t.Fatalf("expected FatalParseError, got %v", err)
		}
	})
}

func TestNewParser(t *testing.T) {
	if _, err := NewParser("json"); err != nil {
		t.Errorf("json mode: %v", err)
	}
	if _, err := NewParser("delimited"); err != nil {
		t.Errorf("delimited mode: %v", err)
	}
	if _, err := NewParser("guess"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
