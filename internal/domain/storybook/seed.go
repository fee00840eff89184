package storybook

import (
	"fmt"
	"strings"
)

// Unset marks a seed field the planner could not fill.
const Unset = "未設定"

// StorySeed is the structured input of page generation.
type StorySeed struct {
	MainCharacter     string `json:"main_character" yaml:"main_character"`
	MainCharacterName string `json:"main_character_name" yaml:"main_character_name"`
	Location          string `json:"location" yaml:"location"`
	Theme             string `json:"theme" yaml:"theme"`
	SubCharacterA     string `json:"sub_character_a" yaml:"sub_character_a"`
	SubCharacterB     string `json:"sub_character_b" yaml:"sub_character_b"`
	Storyline         string `json:"storyline" yaml:"storyline"`
}

// NewUnsetSeed returns a seed whose every field holds Unset.
func NewUnsetSeed() StorySeed {
	return StorySeed{
		MainCharacter:     Unset,
		MainCharacterName: Unset,
		Location:          Unset,
		Theme:             Unset,
		SubCharacterA:     Unset,
		SubCharacterB:     Unset,
		Storyline:         Unset,
	}
}

func IsUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == Unset
}

// SubCharacters returns the sub characters that are actually set.
func (s StorySeed) SubCharacters() []string {
	out := make([]string, 0, 2)
	for _, v := range []string{s.SubCharacterA, s.SubCharacterB} {
		if !IsUnset(v) {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

// Fields returns the seed in premise-table column order.
func (s StorySeed) Fields() []string {
	return []string{
		s.MainCharacter,
		s.MainCharacterName,
		s.Location,
		s.Theme,
		s.SubCharacterA,
		s.SubCharacterB,
		s.Storyline,
	}
}

// Premise is a row of the premise table.
type Premise struct {
	StorySeed `yaml:",inline"`
}

// PremiseFromRow maps a premise-table row; short rows are padded with empty strings.
func PremiseFromRow(row []string) Premise {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return Premise{StorySeed{
		MainCharacter:     cell(0),
		MainCharacterName: cell(1),
		Location:          cell(2),
		Theme:             cell(3),
		SubCharacterA:     cell(4),
		SubCharacterB:     cell(5),
		Storyline:         cell(6),
	}}
}

func (p Premise) Seed() StorySeed { return p.StorySeed }

// Summary is the one-line description shown when browsing premises.
func (p Premise) Summary() string {
	subs := strings.Join(p.SubCharacters(), "、")
	var b strings.Builder
	fmt.Fprintf(&b, "%sの%sが、%sを舞台に", p.MainCharacter, p.MainCharacterName, p.Location)
	if subs != "" {
		fmt.Fprintf(&b, "%sたちと", subs)
	}
	fmt.Fprintf(&b, "%sを学ぶ物語。", p.Theme)
	if strings.TrimSpace(p.Storyline) != "" {
		fmt.Fprintf(&b, "ストーリーは、%s", p.Storyline)
	}
	return b.String()
}
