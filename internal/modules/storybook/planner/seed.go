package planner

import (
	"strings"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

// seedKeys maps normalised keys to seed setters. Both the prompt's keys and the JSON names are accepted.
var seedKeys = map[string]func(*storybook.StorySeed, string){
	"maincharacter":     func(s *storybook.StorySeed, v string) { s.MainCharacter = v },
	"maincharactername": func(s *storybook.StorySeed, v string) { s.MainCharacterName = v },
	"location":          func(s *storybook.StorySeed, v string) { s.Location = v },
	"theme":             func(s *storybook.StorySeed, v string) { s.Theme = v },
	"subcharactera":     func(s *storybook.StorySeed, v string) { s.SubCharacterA = v },
	"subcharacterb":     func(s *storybook.StorySeed, v string) { s.SubCharacterB = v },
	"storyline":         func(s *storybook.StorySeed, v string) { s.Storyline = v },
}

// ParseSeed reads "key: value" lines. Unknown keys and other lines are ignored; missing or empty
// fields are Unset. A repeated key overwrites the earlier value.
func ParseSeed(text string) storybook.StorySeed {
	seed := storybook.NewUnsetSeed()
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		set, known := seedKeys[normalizeKey(key)]
		if !known {
			continue
		}
		if value == "" {
			value = storybook.Unset
		}
		set(&seed, value)
	}
	return seed
}

func splitKeyValue(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	idx := strings.IndexAny(line, ":：")
	if idx <= 0 {
		return "", "", false
	}
	key := line[:idx]
	rest := line[idx:]
	if strings.HasPrefix(rest, "：") {
		rest = rest[len("："):]
	} else {
		rest = rest[1:]
	}
	return key, strings.TrimSpace(rest), true
}

func normalizeKey(k string) string {
	k = strings.TrimLeft(strings.TrimSpace(k), "-*•・ ")
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "", "*", "").Replace(k)
}
