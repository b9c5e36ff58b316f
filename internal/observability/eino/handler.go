package eino

import (
	"context"
	"errors"
	"io"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	llmctx "dreamwriter-api/internal/domain/service"
	"dreamwriter-api/pkg/logger"
	"dreamwriter-api/pkg/metrics"
)

// startTimeKey 在 Context 中保存调用开始时间
type startTimeKey struct{}

// newChatModelCallbackHandler 创建大模型调用的回调处理器
//
// 记录调用次数（成功/失败）、耗时、Token 消耗，并为每次调用开启一个 Span。
// 流式调用在后台读取输出副本，读完后再结束 Span。
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", llmctx.WorkflowFromContext(ctx)),
				attribute.String("llm.provider", llmctx.ProviderFromContext(ctx)),
				attribute.String("llm.model", modelName(ctx, inputModel(input))),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			finishCall(ctx, outputModel(output), usageOf(output), nil)
			return ctx
		},

		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*model.CallbackOutput]) context.Context {
			go drainStream(ctx, output)
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			finishCall(ctx, "", nil, err)
			return ctx
		},
	}
}

// drainStream 读完回调流副本并汇总 Token 用量
func drainStream(ctx context.Context, output *schema.StreamReader[*model.CallbackOutput]) {
	defer output.Close()

	var (
		name  string
		usage *model.TokenUsage
	)
	for {
		chunk, err := output.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			finishCall(ctx, name, usage, err)
			return
		}
		if m := outputModel(chunk); m != "" {
			name = m
		}
		if u := usageOf(chunk); u != nil {
			usage = u
		}
	}
	finishCall(ctx, name, usage, nil)
}

// finishCall 上报指标并结束 Span
func finishCall(ctx context.Context, name string, usage *model.TokenUsage, err error) {
	workflow := llmctx.WorkflowFromContext(ctx)
	name = modelName(ctx, name)

	span := trace.SpanFromContext(ctx)
	if usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(workflow, name, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(workflow, name, "completion").Add(float64(usage.CompletionTokens))
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx, "llm call failed", "workflow", workflow, "model", name, "error", err.Error())
	}
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(workflow, name).Observe(d)
	}
	metrics.LLMCallTotal.WithLabelValues(workflow, name, status).Inc()
	span.End()
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

// modelName 优先使用回调中的模型名，否则取请求上下文
func modelName(ctx context.Context, fromCallback string) string {
	if fromCallback != "" {
		return fromCallback
	}
	return llmctx.ModelFromContext(ctx)
}

func inputModel(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func outputModel(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}

func usageOf(out *model.CallbackOutput) *model.TokenUsage {
	if out == nil {
		return nil
	}
	return out.TokenUsage
}
