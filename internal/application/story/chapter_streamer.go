package story

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"dreamwriter-api/internal/domain/entity"
	"dreamwriter-api/internal/domain/repository"
	llmctx "dreamwriter-api/internal/domain/service"
	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
	apperrors "dreamwriter-api/pkg/errors"
	"dreamwriter-api/pkg/logger"
	"dreamwriter-api/pkg/metrics"
)

const kindChapter = "chapter"

// ChapterRequest 章节生成请求
type ChapterRequest struct {
	APIKey       string
	BaseURL      string
	Model        string
	NovelID      string
	ChapterID    string
	ChapterTitle string
	Guidance     string
}

// ChapterStream 打开上游章节流，由 chain.ChapterChain 实现
type ChapterStream interface {
	Stream(ctx context.Context, spec workflowport.ModelSpec, in workflowprompt.ChapterInput) (*schema.StreamReader[*schema.Message], error)
}

// ChapterEventPublisher 章节生成完成事件发布者
type ChapterEventPublisher interface {
	PublishChapterGenerated(ctx context.Context, chapter *entity.Chapter, model string) error
}

// options 流式生成器的可选配置
type options struct {
	publisher ChapterEventPublisher
	resolve   func(workflowport.ModelSpec) workflowport.ModelSpec
	provider  func(baseURL string) string
}

// Option 可选配置
type Option func(*options)

// WithPublisher 章节生成成功后发布事件
func WithPublisher(p ChapterEventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithSpecResolver 补全模型参数默认值
func WithSpecResolver(fn func(workflowport.ModelSpec) workflowport.ModelSpec) Option {
	return func(o *options) { o.resolve = fn }
}

// WithProviderName 从上游地址推导 provider 标签
func WithProviderName(fn func(baseURL string) string) Option {
	return func(o *options) { o.provider = fn }
}

func newOptions(opts []Option) options {
	o := options{
		resolve:  func(spec workflowport.ModelSpec) workflowport.ModelSpec { return spec },
		provider: func(string) string { return "" },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ChapterStreamer 章节流式生成：取上下文 -> 调用上游 -> 转发 token -> 落库
type ChapterStreamer struct {
	options
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	tx       repository.Transactor
	chain    ChapterStream
}

// NewChapterStreamer 创建章节流式生成器
func NewChapterStreamer(
	novels repository.NovelRepository,
	chapters repository.ChapterRepository,
	tx repository.Transactor,
	chain ChapterStream,
	opts ...Option,
) *ChapterStreamer {
	return &ChapterStreamer{
		options:  newOptions(opts),
		novels:   novels,
		chapters: chapters,
		tx:       tx,
		chain:    chain,
	}
}

// Stream 执行一次章节生成，并通过 w 推送帧
// 生成失败以带内错误帧表达，之后总是发送结束帧；返回的 error 仅表示客户端已断开
func (s *ChapterStreamer) Stream(ctx context.Context, req ChapterRequest, w FrameWriter) error {
	start := time.Now()
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	spec := s.resolve(workflowport.ModelSpec{APIKey: req.APIKey, BaseURL: req.BaseURL, Model: req.Model})
	ctx = logger.WithContext(ctx, logger.NovelIDKey, req.NovelID)
	ctx = llmctx.WithLLMCall(ctx, llmctx.WorkflowChapterStream, s.provider(spec.BaseURL), spec.Model)

	chapter, status, genErr := s.generate(ctx, spec, req, w)
	if IsClientGone(genErr) {
		logger.Warn(ctx, "chapter stream aborted by client", "error", genErr.Error())
		metrics.GenerationTotal.WithLabelValues(kindChapter, "aborted").Inc()
		return genErr
	}

	metrics.GenerationTotal.WithLabelValues(kindChapter, status).Inc()
	metrics.GenerationDuration.WithLabelValues(kindChapter).Observe(time.Since(start).Seconds())
	if genErr != nil {
		logger.Error(ctx, "chapter generation failed", genErr, "status", status)
	} else {
		metrics.GenerationChars.WithLabelValues(kindChapter).Observe(float64(utf8.RuneCountInString(chapter.Content)))
		logger.Info(ctx, "chapter generated",
			"chapter_id", chapter.ID,
			"order", chapter.Order,
			"chars", utf8.RuneCountInString(chapter.Content),
		)
		s.publish(ctx, chapter, spec.Model)
	}

	return finish(w, genErr)
}

// generate 返回落库的章节；失败时返回用于错误帧的错误和状态标签
func (s *ChapterStreamer) generate(ctx context.Context, spec workflowport.ModelSpec, req ChapterRequest, w FrameWriter) (*entity.Chapter, string, error) {
	novel, err := s.novels.GetByID(ctx, req.NovelID)
	if err != nil {
		return nil, "error", err
	}
	if novel == nil {
		return nil, "not_found", apperrors.ErrNovelNotFound
	}

	existing, err := s.chapters.ListByNovel(ctx, req.NovelID)
	if err != nil {
		return nil, "error", err
	}

	sr, err := s.chain.Stream(ctx, spec, workflowprompt.ChapterInput{
		Outline:         novel.Outline,
		Characters:      workflowprompt.CharacterContext(novel),
		PreviousSummary: workflowprompt.PreviousSummary(existing),
		ChapterTitle:    req.ChapterTitle,
		Guidance:        req.Guidance,
	})
	if err != nil {
		return nil, "error", err
	}

	content, err := relay(kindChapter, sr, w)
	if err != nil {
		if IsClientGone(err) {
			return nil, "", err
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, "", ctxErr
		}
		return nil, "error", err
	}

	chapter, err := s.persist(ctx, req, content)
	if err != nil {
		return nil, "error", err
	}
	return chapter, "success", nil
}

// persist 在事务内统计现有章节数并追加新章节
func (s *ChapterStreamer) persist(ctx context.Context, req ChapterRequest, content string) (*entity.Chapter, error) {
	id := req.ChapterID
	if id == "" {
		id = uuid.NewString()
	}

	var chapter *entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		count, err := s.chapters.CountByNovel(ctx, req.NovelID)
		if err != nil {
			return err
		}
		chapter = entity.NewGeneratedChapter(id, req.NovelID, req.ChapterTitle, content, int(count))
		return s.chapters.Create(ctx, chapter)
	})
	if err != nil {
		return nil, fmt.Errorf("save chapter: %w", err)
	}
	return chapter, nil
}

func (s *ChapterStreamer) publish(ctx context.Context, chapter *entity.Chapter, model string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChapterGenerated(ctx, chapter, model); err != nil {
		logger.Warn(ctx, "failed to publish chapter event", "chapter_id", chapter.ID, "error", err.Error())
	}
}
