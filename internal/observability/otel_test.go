package observability

import "testing"

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key=abc , broken, =x, tenant=ehon ")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "ehon" {
		t.Fatalf("ParseHeaders: got=%v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): got=%v want=%v", in, got, want)
		}
	}
}
