// Package service 提供跨层共享的领域辅助
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
	llmCtxKeyModel    llmCtxKey = "llm_model"

	unknown = "unknown"
)

// 工作流名称，用于指标与追踪标签
const (
	WorkflowChapterStream = "chapter_stream"
	WorkflowOutlineStream = "outline_stream"
)

func withValue(ctx context.Context, key llmCtxKey, v string) context.Context {
	if ctx == nil {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueFrom(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return unknown
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

// WithLLMCall 记录本次调用的工作流、provider 与模型
func WithLLMCall(ctx context.Context, workflow, provider, model string) context.Context {
	ctx = withValue(ctx, llmCtxKeyWorkflow, workflow)
	ctx = withValue(ctx, llmCtxKeyProvider, provider)
	return withValue(ctx, llmCtxKeyModel, model)
}

func WorkflowFromContext(ctx context.Context) string {
	return valueFrom(ctx, llmCtxKeyWorkflow)
}

func ProviderFromContext(ctx context.Context) string {
	return valueFrom(ctx, llmCtxKeyProvider)
}

func ModelFromContext(ctx context.Context) string {
	return valueFrom(ctx, llmCtxKeyModel)
}
