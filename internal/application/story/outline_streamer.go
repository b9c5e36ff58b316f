package story

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	llmctx "dreamwriter-api/internal/domain/service"
	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
	"dreamwriter-api/pkg/logger"
	"dreamwriter-api/pkg/metrics"
)

const kindOutline = "outline"

// OutlineRequest 大纲生成请求
type OutlineRequest struct {
	APIKey      string
	BaseURL     string
	Model       string
	Topic       string
	Genre       string
	Description string
}

// OutlineStream 打开上游大纲流，由 chain.OutlineChain 实现
type OutlineStream interface {
	Stream(ctx context.Context, spec workflowport.ModelSpec, in workflowprompt.OutlineInput) (*schema.StreamReader[*schema.Message], error)
}

// OutlineStreamer 大纲流式生成，结果不落库，由客户端通过更新小说保存
type OutlineStreamer struct {
	options
	chain OutlineStream
}

// NewOutlineStreamer 创建大纲流式生成器
func NewOutlineStreamer(chain OutlineStream, opts ...Option) *OutlineStreamer {
	return &OutlineStreamer{
		options: newOptions(opts),
		chain:   chain,
	}
}

// Stream 执行一次大纲生成
func (s *OutlineStreamer) Stream(ctx context.Context, req OutlineRequest, w FrameWriter) error {
	start := time.Now()
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	spec := s.resolve(workflowport.ModelSpec{APIKey: req.APIKey, BaseURL: req.BaseURL, Model: req.Model})
	ctx = llmctx.WithLLMCall(ctx, llmctx.WorkflowOutlineStream, s.provider(spec.BaseURL), spec.Model)

	content, genErr := s.generate(ctx, spec, req, w)
	if IsClientGone(genErr) {
		logger.Warn(ctx, "outline stream aborted by client", "error", genErr.Error())
		metrics.GenerationTotal.WithLabelValues(kindOutline, "aborted").Inc()
		return genErr
	}

	status := "success"
	if genErr != nil {
		status = "error"
		logger.Error(ctx, "outline generation failed", genErr)
	} else {
		metrics.GenerationChars.WithLabelValues(kindOutline).Observe(float64(utf8.RuneCountInString(content)))
		logger.Info(ctx, "outline generated", "chars", utf8.RuneCountInString(content))
	}
	metrics.GenerationTotal.WithLabelValues(kindOutline, status).Inc()
	metrics.GenerationDuration.WithLabelValues(kindOutline).Observe(time.Since(start).Seconds())

	return finish(w, genErr)
}

func (s *OutlineStreamer) generate(ctx context.Context, spec workflowport.ModelSpec, req OutlineRequest, w FrameWriter) (string, error) {
	sr, err := s.chain.Stream(ctx, spec, workflowprompt.OutlineInput{
		Topic:       req.Topic,
		Genre:       req.Genre,
		Description: req.Description,
	})
	if err != nil {
		return "", err
	}

	content, err := relay(kindOutline, sr, w)
	if err != nil && !IsClientGone(err) {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return "", ctxErr
		}
	}
	return content, err
}
