package flow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/ehon-backend/internal/data/repos/books"
	"github.com/yungbote/ehon-backend/internal/data/repos/premises"
	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, img []byte, mime string) (storybook.Elements, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return storybook.Elements{}, f.err
	}
	return storybook.Elements{Caption: "a cat", Labels: []string{"Cat"}, Nouns: []string{"ねこ"}}, nil
}

type fakePlanner struct {
	themes        []string
	themeErr      error
	themeCalls    int
	questionCalls int
	seedCalls     int
	lastTheme     string
}

func (f *fakePlanner) ProposeThemes(ctx context.Context, el storybook.Elements) ([]string, error) {
	f.themeCalls++
	if f.themeErr != nil {
		return nil, f.themeErr
	}
	return f.themes, nil
}

func (f *fakePlanner) ProposeQuestions(ctx context.Context, theme string, el storybook.Elements) ([]string, error) {
	f.questionCalls++
	f.lastTheme = theme
	return []string{"ねこ: 「どこへいく？」→「なにがある？」"}, nil
}

func (f *fakePlanner) BuildStorySeed(ctx context.Context, theme string, el storybook.Elements, q []string, a []storybook.Answer) (storybook.StorySeed, error) {
	f.seedCalls++
	seed := storybook.NewUnsetSeed()
	seed.Theme = theme
	seed.MainCharacterName = "たま"
	return seed, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	seeds []storybook.StorySeed
	err   error
	delay time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, seed storybook.StorySeed, n int) ([]string, []string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seeds = append(f.seeds, seed)
	if f.err != nil {
		return nil, nil, f.err
	}
	pages := make([]string, n)
	ills := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("%s page %d", seed.MainCharacterName, i+1)
		if i != 2 {
			ills[i] = fmt.Sprintf("https://img.example/%d.png", i+1)
		}
	}
	return pages, ills, nil
}

type fakePublisher struct {
	repo books.Repo
	mu   sync.Mutex
}

func (f *fakePublisher) Publish(ctx context.Context, pages, ills []string) (storybook.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.repo.NextIdentifier(ctx)
	if err != nil {
		return storybook.Book{}, err
	}
	var recs []storybook.StoryRecord
	for i := range pages {
		rec := storybook.StoryRecord{BookID: id, PageNumber: i + 1, PageText: pages[i], IllustrationURL: ills[i]}
		_ = f.repo.AppendPage(ctx, rec)
		recs = append(recs, rec)
	}
	return storybook.BookFromRecords(id, recs), nil
}

type harness struct {
	c         *Controller
	extractor *fakeExtractor
	planner   *fakePlanner
	generator *fakeGenerator
	premises  premises.Repo
	books     books.Repo
}

func premise(name string) storybook.Premise {
	return storybook.Premise{StorySeed: storybook.StorySeed{
		MainCharacter: "ねこ", MainCharacterName: name, Location: "まち", Theme: "ゆうき", Storyline: "さがしもの",
	}}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		extractor: &fakeExtractor{},
		planner:   &fakePlanner{themes: []string{"自然と遊ぶ", "ともだち"}},
		generator: &fakeGenerator{},
		premises:  premises.NewMemoryRepo(premise("たま"), premise("みけ"), premise("くろ"), premise("しろ")),
		books:     books.NewMemoryRepo(),
	}
	c, err := NewController(Deps{
		Log:       logger.Nop(),
		Extractor: h.extractor,
		Planner:   h.planner,
		Generator: h.generator,
		Publisher: &fakePublisher{repo: h.books},
		Premises:  h.premises,
		Books:     h.books,
		Sample:    func(n, k int) []int { return []int{2, 0, 1}[:k] },
	}, Config{PremiseSampleSize: 3, PageCount: 5, SaveSeedAsPremise: true})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.c = c
	return h
}

func fire(t *testing.T, c *Controller, s *Session, ev Event) View {
	t.Helper()
	v, err := c.Fire(context.Background(), s, ev)
	if err != nil {
		t.Fatalf("Fire(%s) in %s: %v", ev.Type, s.State, err)
	}
	return v
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func intp(i int) *int { return &i }

func TestRandomFlowProducesGeneratedBook(t *testing.T) {
	h := newHarness(t)
	s := NewSession("s1", time.Now())

	v := fire(t, h.c, s, Event{Type: EventRandom})
	if v.State != StateRandomSelect || len(v.Premises) != 3 {
		t.Fatalf("random: state=%s premises=%d", v.State, len(v.Premises))
	}
	if v.Premises[0].Premise.MainCharacterName != "くろ" {
		t.Fatalf("sample order: got=%q", v.Premises[0].Premise.MainCharacterName)
	}

	fire(t, h.c, s, Event{Type: EventSelect, Choice: intp(1)})
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateResult {
		t.Fatalf("next: state=%s notices=%v", v.State, v.Notices)
	}
	if v.Book == nil || v.Book.ID != storybook.FirstBookID {
		t.Fatalf("book: got=%+v", v.Book)
	}

	wantPages, wantIlls, _ := (&fakeGenerator{}).Generate(context.Background(), premise("たま").Seed(), 5)
	var gotPages, gotIlls []string
	for _, p := range v.Book.Pages {
		gotPages = append(gotPages, p.PageText)
		gotIlls = append(gotIlls, p.IllustrationURL)
	}
	if !reflect.DeepEqual(gotPages, wantPages) || !reflect.DeepEqual(gotIlls, wantIlls) {
		t.Fatalf("pages: got=%v/%v want=%v/%v", gotPages, gotIlls, wantPages, wantIlls)
	}
	if h.generator.seeds[0].MainCharacterName != "たま" {
		t.Fatalf("generated from wrong premise: %+v", h.generator.seeds[0])
	}

	v = fire(t, h.c, s, Event{Type: EventHome})
	if v.State != StateMain || s.Book != nil || s.Premises != nil || s.Flags != (Flags{}) {
		t.Fatalf("home should discard artifacts: %+v", s)
	}
}

func TestNextWithoutChoiceWarns(t *testing.T) {
	h := newHarness(t)
	s := NewSession("s1", time.Now())
	fire(t, h.c, s, Event{Type: EventRandom})
	v := fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateRandomSelect || len(v.Notices) != 1 || v.Notices[0].Level != LevelWarning {
		t.Fatalf("view: %+v", v)
	}
	if h.generator.calls != 0 {
		t.Fatalf("generator called without a choice")
	}
	v = fire(t, h.c, s, Event{Type: EventSelect, Choice: intp(7)})
	if len(v.Notices) != 1 || s.Choice != nil {
		t.Fatalf("out of range choice accepted: %+v", v)
	}
}

func TestInvalidTransition(t *testing.T) {
	h := newHarness(t)
	s := NewSession("s1", time.Now())
	_, err := h.c.Fire(context.Background(), s, Event{Type: EventNext})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err: got=%v want=ErrInvalidTransition", err)
	}
	if s.State != StateMain {
		t.Fatalf("state changed: %s", s.State)
	}
}

func TestEmptyPremiseTableWarns(t *testing.T) {
	h := newHarness(t)
	h.c.deps.Premises = premises.NewMemoryRepo()
	s := NewSession("s1", time.Now())
	v := fire(t, h.c, s, Event{Type: EventRandom})
	if v.State != StateMain || len(v.Notices) != 1 || v.Notices[0].Level != LevelWarning {
		t.Fatalf("view: %+v", v)
	}
	if s.Flags.PremisesSampled {
		t.Fatalf("flag set without premises")
	}
}

func TestLookup(t *testing.T) {
	h := newHarness(t)
	for _, rec := range []storybook.StoryRecord{
		{BookID: "Ehon-00001", PageNumber: 1, PageText: "a"},
		{BookID: "Ehon-00001", PageNumber: 2, PageText: "b"},
	} {
		_ = h.books.AppendPage(context.Background(), rec)
	}

	cases := []struct {
		raw   string
		state State
		level Level
	}{
		{"  ", StateMain, LevelWarning},
		{"book-1", StateMain, LevelWarning},
		{"Ehon-99999", StateMain, LevelWarning},
		{" Ehon-00001 ", StateResult, ""},
	}
	for _, tc := range cases {
		s := NewSession("s", time.Now())
		v := fire(t, h.c, s, Event{Type: EventLookup, BookID: tc.raw})
		if v.State != tc.state {
			t.Fatalf("%q: state=%s want=%s", tc.raw, v.State, tc.state)
		}
		if tc.level == "" {
			if len(v.Notices) != 0 || v.Book == nil || len(v.Book.Pages) != 2 {
				t.Fatalf("%q: view=%+v", tc.raw, v)
			}
			continue
		}
		if len(v.Notices) != 1 || v.Notices[0].Level != tc.level {
			t.Fatalf("%q: notices=%v", tc.raw, v.Notices)
		}
	}
}

func TestCustomFlowAndIdempotentAnalysis(t *testing.T) {
	h := newHarness(t)
	s := NewSession("s1", time.Now())
	fire(t, h.c, s, Event{Type: EventCustom})
	fire(t, h.c, s, Event{Type: EventStart})

	v := fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateUploadImage || v.Notices[0].Level != LevelWarning {
		t.Fatalf("next without image: %+v", v)
	}

	v = fire(t, h.c, s, Event{Type: EventUpload, Image: []byte("garbage")})
	if v.HasImage || len(v.Notices) != 1 {
		t.Fatalf("garbage upload accepted: %+v", v)
	}
	v = fire(t, h.c, s, Event{Type: EventUpload, Image: pngBytes(t), ImageMime: "image/png"})
	if !v.HasImage {
		t.Fatalf("upload not stored")
	}

	h.planner.themeErr = errors.New("model 503")
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateUploadImage || !v.HasError() {
		t.Fatalf("theme failure: %+v", v)
	}
	if !s.Flags.ImageAnalyzed || s.Flags.ThemesProposed {
		t.Fatalf("flags after partial failure: %+v", s.Flags)
	}

	h.planner.themeErr = nil
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateSelectTheme || !reflect.DeepEqual(v.Themes, h.planner.themes) {
		t.Fatalf("select-theme: %+v", v)
	}
	fire(t, h.c, s, Event{Type: EventBack})
	fire(t, h.c, s, Event{Type: EventNext})
	if h.extractor.calls != 1 {
		t.Fatalf("extraction calls: got=%d want=1", h.extractor.calls)
	}
	if h.planner.themeCalls != 2 {
		t.Fatalf("theme calls: got=%d want=2", h.planner.themeCalls)
	}

	v = fire(t, h.c, s, Event{Type: EventSelect, Theme: "うちゅう"})
	if len(v.Notices) != 1 || s.Theme != "" {
		t.Fatalf("unknown theme accepted: %+v", v)
	}
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateAnswerQuestions || v.Theme != "自然と遊ぶ" {
		t.Fatalf("theme should default to first proposal: %+v", v)
	}
	if len(v.Questions) != 1 || v.Questions[0].FollowUp != "「なにがある？」" {
		t.Fatalf("questions: %+v", v.Questions)
	}

	fire(t, h.c, s, Event{Type: EventAnswer, Answers: []storybook.Answer{{Question: "どこへいく？", Main: "うみ"}}})
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateResult || v.Book == nil || len(v.Book.Pages) != 5 {
		t.Fatalf("result: %+v", v)
	}
	if h.generator.seeds[0].Theme != "自然と遊ぶ" {
		t.Fatalf("seed theme: %+v", h.generator.seeds[0])
	}
	saved, _ := h.premises.List(context.Background())
	if len(saved) != 5 || saved[4].MainCharacterName != "たま" {
		t.Fatalf("seed not appended as premise: %d rows", len(saved))
	}
}

func TestNewUploadClearsAnalysis(t *testing.T) {
	h := newHarness(t)
	s := NewSession("s1", time.Now())
	fire(t, h.c, s, Event{Type: EventCustom})
	fire(t, h.c, s, Event{Type: EventStart})
	fire(t, h.c, s, Event{Type: EventUpload, Image: pngBytes(t)})
	fire(t, h.c, s, Event{Type: EventNext})
	fire(t, h.c, s, Event{Type: EventBack})
	fire(t, h.c, s, Event{Type: EventUpload, Image: pngBytes(t)})
	if s.Flags.ImageAnalyzed || s.Elements != nil || s.Themes != nil {
		t.Fatalf("analysis not cleared: %+v", s)
	}
	fire(t, h.c, s, Event{Type: EventNext})
	if h.extractor.calls != 2 {
		t.Fatalf("extraction calls: got=%d want=2", h.extractor.calls)
	}
}

func TestGenerationFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.generator.err = errors.New("text 500")
	s := NewSession("s1", time.Now())
	fire(t, h.c, s, Event{Type: EventRandom})
	fire(t, h.c, s, Event{Type: EventSelect, Choice: intp(0)})
	v := fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateRandomSelect || !v.HasError() || s.Flags.BookGenerated {
		t.Fatalf("view: %+v flags=%+v", v, s.Flags)
	}
	h.generator.err = nil
	v = fire(t, h.c, s, Event{Type: EventNext})
	if v.State != StateResult {
		t.Fatalf("retry: %+v", v)
	}
}

func TestAllowedEvents(t *testing.T) {
	got := Allowed(StateSelectTheme)
	want := []EventType{EventSelect, EventNext, EventBack}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	if got := Allowed(StateResult); !reflect.DeepEqual(got, []EventType{EventHome}) {
		t.Fatalf("result: got=%v", got)
	}
}
