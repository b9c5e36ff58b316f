package story

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/domain/entity"
	"dreamwriter-api/internal/infrastructure/persistence/store"
	"dreamwriter-api/internal/workflow/chain"
	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
)

type fakeChatModel struct {
	chunks    []string
	streamErr error
	recvErr   error

	mu    sync.Mutex
	input []*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(strings.Join(m.chunks, ""), nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.mu.Lock()
	m.input = in
	m.mu.Unlock()

	if m.streamErr != nil {
		return nil, m.streamErr
	}

	sr, sw := schema.Pipe[*schema.Message](len(m.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range m.chunks {
			sw.Send(schema.AssistantMessage(c, nil), nil)
		}
		if m.recvErr != nil {
			sw.Send(nil, m.recvErr)
		}
	}()
	return sr, nil
}

func (m *fakeChatModel) prompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return workflowprompt.Text(m.input)
}

type fakeFactory struct {
	model *fakeChatModel
	err   error
	specs []workflowport.ModelSpec
}

func (f *fakeFactory) NewChatModel(_ context.Context, spec workflowport.ModelSpec) (model.BaseChatModel, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

type recorder struct {
	frames []Frame
	failAt int
}

func (r *recorder) WriteFrame(f Frame) error {
	if r.failAt > 0 && len(r.frames)+1 == r.failAt {
		return errors.New("broken pipe")
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) kinds() []FrameKind {
	out := make([]FrameKind, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f.Kind)
	}
	return out
}

func (r *recorder) tokens() string {
	var sb strings.Builder
	for _, f := range r.frames {
		if f.Kind == FrameToken {
			sb.WriteString(f.Text)
		}
	}
	return sb.String()
}

type fakePublisher struct {
	published []*entity.Chapter
}

func (p *fakePublisher) PublishChapterGenerated(_ context.Context, ch *entity.Chapter, _ string) error {
	p.published = append(p.published, ch)
	return nil
}

type fixture struct {
	novels   *store.NovelRepository
	chapters *store.ChapterRepository
	factory  *fakeFactory
	streamer *ChapterStreamer
	pub      *fakePublisher
}

func newFixture(t *testing.T, m *fakeChatModel) *fixture {
	t.Helper()

	client, err := store.NewClient(&config.DatabaseConfig{
		Driver:   store.DriverSQLite,
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "story.db")},
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		novels:   store.NewNovelRepository(client),
		chapters: store.NewChapterRepository(client),
		factory:  &fakeFactory{model: m},
		pub:      &fakePublisher{},
	}
	f.streamer = NewChapterStreamer(
		f.novels, f.chapters, store.NewTxManager(client),
		chain.NewChapterChain(f.factory, workflowprompt.NewRegistry()),
		WithPublisher(f.pub),
	)
	return f
}

func (f *fixture) seedNovel(t *testing.T, chapters ...string) {
	t.Helper()
	ctx := context.Background()

	novel := entity.NewNovel("n-1", "长夜")
	novel.Outline = "边城少年的成长"
	novel.Description = "林舟：主角"
	require.NoError(t, f.novels.Create(ctx, novel))

	for i, content := range chapters {
		require.NoError(t, f.chapters.Create(ctx, &entity.Chapter{
			ID:      "old-" + string(rune('a'+i)),
			NovelID: "n-1",
			Content: content,
			Order:   i + 1,
			Status:  entity.ChapterStatusCompleted,
		}))
	}
}

func chapterRequest() ChapterRequest {
	return ChapterRequest{
		APIKey:       "sk-test",
		BaseURL:      "https://api.example.com/v1",
		Model:        "m",
		NovelID:      "n-1",
		ChapterID:    "c-new",
		ChapterTitle: "夜袭",
		Guidance:     "主角出手",
	}
}

func TestChapterStreamUnknownNovel(t *testing.T) {
	f := newFixture(t, &fakeChatModel{chunks: []string{"x"}})
	w := &recorder{}

	req := chapterRequest()
	req.NovelID = "missing"
	require.NoError(t, f.streamer.Stream(context.Background(), req, w))

	require.Equal(t, []Frame{ErrorFrame("Novel not found"), DoneFrame()}, w.frames)
	require.Empty(t, f.factory.specs)

	got, err := f.chapters.GetByID(context.Background(), "c-new")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestChapterStreamPersistsConcatenatedTokens(t *testing.T) {
	f := newFixture(t, &fakeChatModel{chunks: []string{"月黑", "", "风高，", "城门大开。"}})
	f.seedNovel(t, "第一章正文", "第二章正文")
	w := &recorder{}

	require.NoError(t, f.streamer.Stream(context.Background(), chapterRequest(), w))

	require.Equal(t, []FrameKind{FrameToken, FrameToken, FrameToken, FrameDone}, w.kinds())

	chapters, err := f.chapters.ListByNovel(context.Background(), "n-1")
	require.NoError(t, err)
	require.Len(t, chapters, 3)

	created := chapters[2]
	require.Equal(t, "c-new", created.ID)
	require.Equal(t, w.tokens(), created.Content)
	require.Equal(t, "月黑风高，城门大开。", created.Content)
	require.Equal(t, 3, created.Order)
	require.Equal(t, entity.ChapterStatusCompleted, created.Status)
	require.Equal(t, "夜袭", created.Title)

	require.Len(t, f.pub.published, 1)
	require.Equal(t, "c-new", f.pub.published[0].ID)
	require.Equal(t, "sk-test", f.factory.specs[0].APIKey)
}

func TestChapterStreamGeneratesIDWhenMissing(t *testing.T) {
	f := newFixture(t, &fakeChatModel{chunks: []string{"正文"}})
	f.seedNovel(t)

	req := chapterRequest()
	req.ChapterID = ""
	require.NoError(t, f.streamer.Stream(context.Background(), req, &recorder{}))

	chapters, err := f.chapters.ListByNovel(context.Background(), "n-1")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	require.NotEmpty(t, chapters[0].ID)
	require.Equal(t, 1, chapters[0].Order)
}

func TestChapterStreamUpstreamErrorMidStream(t *testing.T) {
	f := newFixture(t, &fakeChatModel{chunks: []string{"一半"}, recvErr: errors.New("upstream reset")})
	f.seedNovel(t, "第一章")
	w := &recorder{}

	require.NoError(t, f.streamer.Stream(context.Background(), chapterRequest(), w))

	require.Equal(t, []Frame{TokenFrame("一半"), ErrorFrame("upstream reset"), DoneFrame()}, w.frames)

	count, err := f.chapters.CountByNovel(context.Background(), "n-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Empty(t, f.pub.published)
}

func TestChapterStreamUpstreamOpenFails(t *testing.T) {
	f := newFixture(t, &fakeChatModel{streamErr: errors.New("401 invalid api key")})
	f.seedNovel(t)
	w := &recorder{}

	require.NoError(t, f.streamer.Stream(context.Background(), chapterRequest(), w))
	require.Equal(t, []Frame{ErrorFrame("401 invalid api key"), DoneFrame()}, w.frames)
}

func TestChapterStreamFactoryError(t *testing.T) {
	f := newFixture(t, nil)
	f.factory.err = errors.New("bad base url")
	f.seedNovel(t)
	w := &recorder{}

	require.NoError(t, f.streamer.Stream(context.Background(), chapterRequest(), w))
	require.Equal(t, []FrameKind{FrameError, FrameDone}, w.kinds())
	require.Equal(t, "bad base url", w.frames[0].Text)
}

func TestChapterStreamUsesTruncatedPreviousChapter(t *testing.T) {
	m := &fakeChatModel{chunks: []string{"续写"}}
	f := newFixture(t, m)
	f.seedNovel(t, "第一章", strings.Repeat("甲", 500)+strings.Repeat("乙", 100))

	require.NoError(t, f.streamer.Stream(context.Background(), chapterRequest(), &recorder{}))

	prompt := m.prompt()
	require.Contains(t, prompt, "[前情提要]\n上一章讲到："+strings.Repeat("甲", 500)+"...")
	require.NotContains(t, prompt, "乙")
	require.Contains(t, prompt, "[主要人物卡参考]\n林舟：主角")
	require.Contains(t, prompt, "[世界观与大纲参考]\n边城少年的成长")
}

func TestChapterStreamClientGone(t *testing.T) {
	f := newFixture(t, &fakeChatModel{chunks: []string{"a", "b", "c"}})
	f.seedNovel(t)
	w := &recorder{failAt: 2}

	err := f.streamer.Stream(context.Background(), chapterRequest(), w)
	require.True(t, IsClientGone(err))
	require.Len(t, w.frames, 1)

	count, err := f.chapters.CountByNovel(context.Background(), "n-1")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestOutlineStream(t *testing.T) {
	m := &fakeChatModel{chunks: []string{"# 背景设定", "\n..."}}
	factory := &fakeFactory{model: m}
	streamer := NewOutlineStreamer(
		chain.NewOutlineChain(factory, workflowprompt.NewRegistry()),
		WithSpecResolver(func(spec workflowport.ModelSpec) workflowport.ModelSpec {
			if spec.Model == "" {
				spec.Model = "default"
			}
			return spec
		}),
	)
	w := &recorder{}

	err := streamer.Stream(context.Background(), OutlineRequest{APIKey: "k", Topic: "逆袭", Genre: "玄幻"}, w)
	require.NoError(t, err)

	require.Equal(t, []FrameKind{FrameToken, FrameToken, FrameDone}, w.kinds())
	require.Equal(t, "# 背景设定\n...", w.tokens())
	require.Equal(t, "default", factory.specs[0].Model)
	require.Contains(t, m.prompt(), "题材：玄幻")
}

func TestOutlineStreamError(t *testing.T) {
	streamer := NewOutlineStreamer(chain.NewOutlineChain(&fakeFactory{err: errors.New("no key")}, workflowprompt.NewRegistry()))
	w := &recorder{}

	require.NoError(t, streamer.Stream(context.Background(), OutlineRequest{}, w))
	require.Equal(t, []Frame{ErrorFrame("no key"), DoneFrame()}, w.frames)
}
