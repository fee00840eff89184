package generator

import (
	"fmt"
	"strings"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

const (
	pageSystem   = "あなたは日本語の幼児向け絵本作家です。やさしい語り口調で物語を話します。"
	promptSystem = "You specialize in generating detailed illustration prompts for AI tools."
)

func endingInstruction(page, total int) string {
	switch {
	case page == total:
		return "このページでストーリーを完結させてください。"
	case page == total-1:
		return "次のページが最後のページになるように内容を調整してください。"
	default:
		return "次のページに続く内容にしてください。「…。」のように文章を終わらせるのはやめてください。"
	}
}

func pagePrompt(seed storybook.StorySeed, targetAge, page, total int, previous []string) string {
	return fmt.Sprintf(`あなたは%[1]d歳の子供向け絵本の作家です。子どもが分かるような簡単な言葉を使い、ですます調で書いてください。
以下の情報をもとに、%[2]dページ目のストーリーを作成してください。
主役のキャラクター: %[3]s (名前: %[4]s)
舞台: %[5]s
テーマ: %[6]s
サブキャラクター: %[7]s
ストーリー構成: %[8]s
禁止ワード: 「次のページ」「最後のページ」「…。」
ページの内容は80文字程度（最大100文字）にしてください。

これまでのストーリー:
%[9]s

%[2]dページ目のストーリー（全%[10]dページ）: %[11]s`,
		targetAge, page,
		seed.MainCharacter, seed.MainCharacterName, seed.Location, seed.Theme,
		strings.Join(seed.SubCharacters(), ", "), seed.Storyline,
		strings.Join(previous, "\n"), total, endingInstruction(page, total))
}

func illustrationPrompt(pageText string, seed storybook.StorySeed, targetAge int) string {
	return fmt.Sprintf(`Based on the following story, craft a vivid, colorful, child-friendly prompt for an illustration tool:

%s

Include these details:
- The main character: %s
- The theme: %s
- Sub-characters: %s
Keep the style consistent across the book, with vibrant colors and whimsical elements suitable for children aged %d.
Output the prompt only.`,
		pageText, seed.MainCharacterName, seed.Theme, strings.Join(seed.SubCharacters(), ", "), targetAge)
}
