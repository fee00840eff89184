package storybook

import (
	"strings"
	"testing"
)

func TestPremiseFromRowPadsShortRows(t *testing.T) {
	p := PremiseFromRow([]string{"うさぎ", "ミミ", "森"})
	if p.MainCharacter != "うさぎ" || p.MainCharacterName != "ミミ" || p.Location != "森" {
		t.Fatalf("unexpected leading fields: %+v", p)
	}
	if p.Theme != "" || p.Storyline != "" {
		t.Fatalf("missing cells should be empty: %+v", p)
	}
}

func TestSubCharactersSkipsUnset(t *testing.T) {
	s := NewUnsetSeed()
	s.SubCharacterA = "きつね"
	got := s.SubCharacters()
	if len(got) != 1 || got[0] != "きつね" {
		t.Fatalf("SubCharacters: got=%v", got)
	}
}

func TestPremiseSummaryMentionsFields(t *testing.T) {
	p := Premise{StorySeed{
		MainCharacter:     "くま",
		MainCharacterName: "ポポ",
		Location:          "海辺",
		Theme:             "友情",
		SubCharacterA:     "かに",
		Storyline:         "ポポは迷子のかにを助ける。",
	}}
	s := p.Summary()
	for _, want := range []string{"くま", "ポポ", "海辺", "かにたちと", "友情", "迷子"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary %q missing %q", s, want)
		}
	}
}

func TestParseQuestion(t *testing.T) {
	q := ParseQuestion("- 雲: どこへ行くの？ → その先には何がある？")
	if q.Main != "- 雲: どこへ行くの？" {
		t.Fatalf("main: got=%q", q.Main)
	}
	if q.FollowUp != "その先には何がある？" {
		t.Fatalf("follow up: got=%q", q.FollowUp)
	}

	plain := ParseQuestion("ネコは何を教えてくれる？")
	if plain.FollowUp != "" {
		t.Fatalf("follow up should be empty: got=%q", plain.FollowUp)
	}
}
