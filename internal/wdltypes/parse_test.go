package wdltypes

import "testing"

func TestParse_RoundTrip(t *testing.T) {
	cases := []string{
		"Int",
		"Float",
		"String",
		"Boolean",
		"File",
		"Array[Int]",
		"Array[Array[String]]",
		"Int?",
		"Array[Int]?",
		"Pair[String, File]",
		"Pair[Array[Int], Boolean?]",
	}

	for _, s := range cases {
		typ, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := typ.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParse_StructFallsBackToName(t *testing.T) {
	typ, err := Parse("SampleRecord")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, ok := typ.(Struct)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want Struct", "SampleRecord", typ)
	}
	if s.Name != "SampleRecord" {
		t.Errorf("Name = %q, want %q", s.Name, "SampleRecord")
	}
}

func TestParse_EmptyIsError(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("Parse(\"\") should have failed")
	}
}

func TestParse_UnbalancedBracketsIsError(t *testing.T) {
	if _, err := Parse("Pair[Int, String"); err == nil {
		t.Fatal("Parse of unbalanced brackets should have failed")
	}
}
