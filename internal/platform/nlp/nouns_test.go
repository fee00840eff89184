package nlp

import (
	"reflect"
	"testing"
)

func TestCommonNounsKeepsNouns(t *testing.T) {
	got, err := CommonNouns("A small dog plays with two red balls in the park.")
	if err != nil {
		t.Fatalf("CommonNouns: %v", err)
	}
	found := false
	for _, w := range got {
		if w == "the" || w == "a" {
			t.Fatalf("determiner kept: %v", got)
		}
		if w == "dog" {
			found = true
		}
	}
	if !found {
		t.Fatalf("dog missing from %v", got)
	}
}

func TestCommonNounsEmpty(t *testing.T) {
	got, err := CommonNouns("   ")
	if err != nil || got != nil {
		t.Fatalf("blank: got=%v err=%v", got, err)
	}
}

func TestUnionTerms(t *testing.T) {
	got := UnionTerms([]string{"dog", "Park", ""}, []string{"Dog", "cat", " park "})
	want := []string{"dog", "Park", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}
