package planner

import (
	"fmt"
	"strings"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

const plannerSystem = "あなたは創造的な絵本のアイデアを生成するプロフェッショナルです。"

func themesPrompt(el storybook.Elements) string {
	return fmt.Sprintf(`次の要素に基づいて、絵本のテーマを3つ提案してください:
%s。

条件:
1. 各テーマはユニークであること。
2. 子どもが興味を持てる楽しいテーマにすること。
3. テーマのみを1行に1つずつ書くこと。

例:
- 「自然と遊ぶ」
- 「心をつなぐ笑顔」
- 「アートで冒険」`, strings.Join(el.Nouns, ", "))
}

func questionsPrompt(theme string, el storybook.Elements) string {
	return fmt.Sprintf(`次の絵の要素に基づいて、物語のアイデアを深掘りする「問いかけ」を生成してください:
%s。
テーマは「%s」です。

条件:
1. 未就学児が答えやすく、想像力を広げられる問いかけにすること。
2. 答えをもとにさらにアイデアを引き出す追加の問いかけを「→」でつなぐこと。
3. 問いかけのみを作成すること。

例:
- 雲: 「この雲はどこに向かっているのかな？」→「その先にはどんな世界が広がっている？」
- ネコ: 「このネコが話せるなら、何を教えてくれる？」→「教えてもらったことをどう使う？」`,
		strings.Join(el.Nouns, ", "), theme)
}

func seedPrompt(theme string, el storybook.Elements, questions []string, answers []storybook.Answer) string {
	var qa strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&qa, "- %s: %s", a.Question, a.Main)
		if strings.TrimSpace(a.FollowUp) != "" {
			fmt.Fprintf(&qa, " / %s", a.FollowUp)
		}
		qa.WriteString("\n")
	}
	return fmt.Sprintf(`次の要素とユーザーからの情報に基づいて、絵本の生成に必要な情報を生成してください:
%s。
テーマは「%s」です。

事前に問いかけした内容:
%s

ユーザーからの情報:
%s
以下の構造で情報を生成してください:
maincharacter: 主人公の説明
maincharacter_name: 主人公の名前
location: 舞台となる場所
theme: 絵本のテーマ
subcharacter_A: サブキャラクターAの説明
subcharacter_B: サブキャラクターBの説明
storyline: 絵本のストーリーライン

空欄の場合は「%s」と記載してください。`,
		strings.Join(el.Nouns, ", "), theme, strings.Join(questions, "\n"), qa.String(), storybook.Unset)
}
