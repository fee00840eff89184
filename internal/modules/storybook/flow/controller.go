package flow

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/imageprep"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (storybook.Elements, error)
}

type Planner interface {
	ProposeThemes(ctx context.Context, el storybook.Elements) ([]string, error)
	ProposeQuestions(ctx context.Context, theme string, el storybook.Elements) ([]string, error)
	BuildStorySeed(ctx context.Context, theme string, el storybook.Elements, questions []string, answers []storybook.Answer) (storybook.StorySeed, error)
}

type Generator interface {
	Generate(ctx context.Context, seed storybook.StorySeed, numPages int) ([]string, []string, error)
}

type Publisher interface {
	Publish(ctx context.Context, pages []string, illustrations []string) (storybook.Book, error)
}

type PremiseStore interface {
	List(ctx context.Context) ([]storybook.Premise, error)
	Append(ctx context.Context, p storybook.Premise) error
}

type BookFinder interface {
	FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error)
}

type Deps struct {
	Log       *logger.Logger
	Extractor Extractor
	Planner   Planner
	Generator Generator
	Publisher Publisher
	Premises  PremiseStore
	Books     BookFinder

	// Sample picks k distinct indexes out of n. Defaults to a random permutation.
	Sample func(n, k int) []int
	Now    func() time.Time
}

type Config struct {
	PremiseSampleSize int
	PageCount         int
	MaxImageEdge      int
	SaveSeedAsPremise bool
}

// Controller applies events to sessions. It holds no per-session state.
type Controller struct {
	log  *logger.Logger
	deps Deps
	cfg  Config
}

func NewController(deps Deps, cfg Config) (*Controller, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Extractor == nil || deps.Planner == nil || deps.Generator == nil ||
		deps.Publisher == nil || deps.Premises == nil || deps.Books == nil {
		return nil, fmt.Errorf("flow: missing collaborator")
	}
	if deps.Sample == nil {
		deps.Sample = randomSample
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.PremiseSampleSize <= 0 {
		cfg.PremiseSampleSize = 3
	}
	if cfg.PageCount <= 0 {
		cfg.PageCount = storybook.DefaultPageCount
	}
	if cfg.MaxImageEdge <= 0 {
		cfg.MaxImageEdge = imageprep.DefaultMaxEdge
	}
	return &Controller{log: deps.Log.With("module", "flow"), deps: deps, cfg: cfg}, nil
}

func randomSample(n, k int) []int {
	perm := rand.Perm(n)
	if k < n {
		perm = perm[:k]
	}
	return perm
}

// Fire applies ev to s. It returns ErrInvalidTransition when ev is not accepted in s.State;
// in that case s is untouched. Otherwise s is updated in place and the resulting view returned.
// Missing input and upstream failures become notices and leave the state unchanged.
func (c *Controller) Fire(ctx context.Context, s *Session, ev Event) (View, error) {
	to, err := Target(s.State, ev.Type)
	if err != nil {
		return View{}, err
	}
	log := c.log.With("session_id", s.ID, "state", s.State, "event", ev.Type)

	var n *Notice
	switch ev.Type {
	case EventRandom:
		n = c.samplePremises(ctx, s)
	case EventLookup:
		n = c.lookup(ctx, s, ev.BookID)
	case EventUpload:
		n = c.upload(s, ev)
	case EventSelect:
		n = c.selectOption(s, ev)
	case EventAnswer:
		s.Answers = append([]storybook.Answer(nil), ev.Answers...)
		s.clearSeed()
	case EventNext:
		n = c.next(ctx, s)
	case EventHome:
		s.Reset()
	}

	s.UpdatedAt = c.deps.Now()
	if n != nil {
		if n.Level == LevelError {
			log.Warn("action failed", "message", n.Message)
		}
		return Render(s, *n), nil
	}
	s.State = to
	return Render(s), nil
}

func warn(msg string) *Notice { return &Notice{Level: LevelWarning, Message: msg} }

func failed(msg string) *Notice { return &Notice{Level: LevelError, Message: msg} }

func (c *Controller) samplePremises(ctx context.Context, s *Session) *Notice {
	if s.Flags.PremisesSampled {
		return nil
	}
	all, err := c.deps.Premises.List(ctx)
	if err != nil {
		c.log.Error("premise list failed", "error", err)
		return failed("お話のたねを読み込めませんでした。もう一度お試しください。")
	}
	if len(all) == 0 {
		return warn("お話のたねがまだ登録されていません。")
	}
	idx := c.deps.Sample(len(all), c.cfg.PremiseSampleSize)
	s.Premises = make([]storybook.Premise, 0, len(idx))
	for _, i := range idx {
		s.Premises = append(s.Premises, all[i])
	}
	s.Choice = nil
	s.Flags.PremisesSampled = true
	return nil
}

func (c *Controller) lookup(ctx context.Context, s *Session, raw string) *Notice {
	id, err := storybook.ParseBookID(raw)
	switch {
	case errors.Is(err, storybook.ErrBlankBookID):
		return warn("絵本IDを入力してください。")
	case err != nil:
		return warn(fmt.Sprintf("絵本ID「%s」の形式が正しくありません（例: Ehon-00001）。", strings.TrimSpace(raw)))
	}
	rows, err := c.deps.Books.FindByIdentifier(ctx, id)
	if err != nil {
		c.log.Error("book lookup failed", "book_id", id, "error", err)
		return failed("絵本を読み込めませんでした。もう一度お試しください。")
	}
	if len(rows) == 0 {
		return warn(fmt.Sprintf("絵本ID「%s」は見つかりませんでした。", id))
	}
	book := storybook.BookFromRecords(id, rows)
	s.Book = &book
	return nil
}

func (c *Controller) upload(s *Session, ev Event) *Notice {
	if len(ev.Image) == 0 {
		return warn("画像を選んでください。")
	}
	img, err := imageprep.Normalize(ev.Image, c.cfg.MaxImageEdge)
	if err != nil {
		c.log.Warn("upload rejected", "session_id", s.ID, "error", err)
		return warn("この画像は読み込めませんでした。PNG、JPEG、GIF、WebP、BMPのいずれかを選んでください。")
	}
	s.Image = img
	s.ImageMime = imageprep.MimeType
	s.clearAnalysis()
	return nil
}

func (c *Controller) selectOption(s *Session, ev Event) *Notice {
	switch s.State {
	case StateRandomSelect:
		if ev.Choice == nil {
			return warn("お話を1つ選んでください。")
		}
		i := *ev.Choice
		if i < 0 || i >= len(s.Premises) {
			return warn("選んだお話が見つかりません。")
		}
		if s.Choice == nil || *s.Choice != i {
			s.clearSeed()
		}
		s.Choice = &i
	case StateSelectTheme:
		theme := strings.TrimSpace(ev.Theme)
		if !contains(s.Themes, theme) {
			return warn("提案されたテーマから選んでください。")
		}
		if theme != s.Theme {
			s.clearQuestions()
		}
		s.Theme = theme
	}
	return nil
}

func (c *Controller) next(ctx context.Context, s *Session) *Notice {
	switch s.State {
	case StateRandomSelect:
		if s.Choice == nil || *s.Choice < 0 || *s.Choice >= len(s.Premises) {
			return warn("お話を1つ選んでください。")
		}
		return c.generate(ctx, s, s.Premises[*s.Choice].Seed())
	case StateUploadImage:
		return c.analyse(ctx, s)
	case StateSelectTheme:
		return c.proposeQuestions(ctx, s)
	case StateAnswerQuestions:
		return c.buildAndGenerate(ctx, s)
	}
	return nil
}

func (c *Controller) analyse(ctx context.Context, s *Session) *Notice {
	if len(s.Image) == 0 {
		return warn("画像をアップロードしてください。")
	}
	if !s.Flags.ImageAnalyzed {
		el, err := c.deps.Extractor.Extract(ctx, s.Image, s.ImageMime)
		if err != nil {
			c.log.Error("image analysis failed", "session_id", s.ID, "error", err)
			return failed("画像の解析に失敗しました。もう一度「つぎへ」を押してください。")
		}
		s.Elements = &el
		s.Flags.ImageAnalyzed = true
	}
	if !s.Flags.ThemesProposed {
		themes, err := c.deps.Planner.ProposeThemes(ctx, *s.Elements)
		if err != nil {
			c.log.Error("theme proposal failed", "session_id", s.ID, "error", err)
			return failed("テーマを考えられませんでした。もう一度「つぎへ」を押してください。")
		}
		s.Themes = themes
		s.Flags.ThemesProposed = true
	}
	return nil
}

func (c *Controller) proposeQuestions(ctx context.Context, s *Session) *Notice {
	if s.Theme == "" {
		if len(s.Themes) == 0 {
			return warn("テーマがありません。画像のページに戻ってやり直してください。")
		}
		s.Theme = s.Themes[0]
	}
	if s.Flags.QuestionsProposed {
		return nil
	}
	questions, err := c.deps.Planner.ProposeQuestions(ctx, s.Theme, elementsOf(s))
	if err != nil {
		c.log.Error("question proposal failed", "session_id", s.ID, "error", err)
		return failed("問いかけを作れませんでした。もう一度「つぎへ」を押してください。")
	}
	s.Questions = questions
	s.Flags.QuestionsProposed = true
	return nil
}

func (c *Controller) buildAndGenerate(ctx context.Context, s *Session) *Notice {
	if s.Seed == nil {
		seed, err := c.deps.Planner.BuildStorySeed(ctx, s.Theme, elementsOf(s), s.Questions, s.Answers)
		if err != nil {
			c.log.Error("story seed failed", "session_id", s.ID, "error", err)
			return failed("絵本の設定を作れませんでした。もう一度「つぎへ」を押してください。")
		}
		s.Seed = &seed
	}
	if c.cfg.SaveSeedAsPremise && !s.Flags.SeedSaved {
		if err := c.deps.Premises.Append(ctx, storybook.Premise{StorySeed: *s.Seed}); err != nil {
			c.log.Warn("saving seed as premise failed", "session_id", s.ID, "error", err)
		} else {
			s.Flags.SeedSaved = true
		}
	}
	return c.generate(ctx, s, *s.Seed)
}

func (c *Controller) generate(ctx context.Context, s *Session, seed storybook.StorySeed) *Notice {
	if s.Flags.BookGenerated && s.Book != nil {
		return nil
	}
	pages, illustrations, err := c.deps.Generator.Generate(ctx, seed, c.cfg.PageCount)
	if err != nil {
		c.log.Error("story generation failed", "session_id", s.ID, "error", err)
		return failed("絵本の生成中にエラーが発生しました。もう一度「つぎへ」を押してください。")
	}
	book, err := c.deps.Publisher.Publish(ctx, pages, illustrations)
	if err != nil {
		c.log.Error("publishing failed", "session_id", s.ID, "error", err)
		return failed("絵本の保存に失敗しました。もう一度「つぎへ」を押してください。")
	}
	s.Book = &book
	s.Flags.BookGenerated = true
	return nil
}

func elementsOf(s *Session) storybook.Elements {
	if s.Elements == nil {
		return storybook.Elements{}
	}
	return *s.Elements
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
