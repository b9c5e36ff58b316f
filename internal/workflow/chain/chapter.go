// Package chain 封装单次 LLM 流式调用：取模型、渲染提示词、打开流
package chain

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
)

// ChapterChain 章节生成链
type ChapterChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
}

func NewChapterChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry) *ChapterChain {
	return &ChapterChain{factory: factory, registry: registry}
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
func (c *ChapterChain) Stream(ctx context.Context, spec workflowport.ModelSpec, in workflowprompt.ChapterInput) (*schema.StreamReader[*schema.Message], error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}

	msgs, err := c.registry.ChapterMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return openStream(ctx, c.factory, spec, msgs)
}

// OutlineChain 大纲生成链
type OutlineChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
}

func NewOutlineChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry) *OutlineChain {
	return &OutlineChain{factory: factory, registry: registry}
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
func (c *OutlineChain) Stream(ctx context.Context, spec workflowport.ModelSpec, in workflowprompt.OutlineInput) (*schema.StreamReader[*schema.Message], error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}

	msgs, err := c.registry.OutlineMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return openStream(ctx, c.factory, spec, msgs)
}

func openStream(ctx context.Context, factory workflowport.ChatModelFactory, spec workflowport.ModelSpec, msgs []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	chatModel, err := factory.NewChatModel(ctx, spec)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs)
}
