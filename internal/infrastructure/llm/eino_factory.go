package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/workflow/port"
)

// EinoFactory 按请求创建 OpenAI 兼容的 Eino ChatModel
// API Key 来自调用方，不在进程内缓存
type EinoFactory struct {
	config *config.LLMConfig
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{config: &cfg.LLM}
}

// Resolve 用配置默认值补全请求参数
func (f *EinoFactory) Resolve(spec port.ModelSpec) port.ModelSpec {
	if strings.TrimSpace(spec.BaseURL) == "" {
		spec.BaseURL = f.config.BaseURL
	}
	if strings.TrimSpace(spec.Model) == "" {
		spec.Model = f.config.Model
	}
	return spec
}

// NewChatModel 创建 ChatModel，上游调用不设超时
func (f *EinoFactory) NewChatModel(ctx context.Context, spec port.ModelSpec) (model.BaseChatModel, error) {
	spec = f.Resolve(spec)
	if strings.TrimSpace(spec.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	cfg := &openai.ChatModelConfig{
		APIKey:  spec.APIKey,
		BaseURL: spec.BaseURL,
		Model:   spec.Model,
	}
	if f.config.MaxTokens > 0 {
		cfg.MaxTokens = ptr(f.config.MaxTokens)
	}
	if f.config.Temperature > 0 {
		cfg.Temperature = ptr(f.config.Temperature)
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", spec.Model, err)
	}
	return chatModel, nil
}

// ProviderName 以上游地址的主机名作为 provider 标签
func ProviderName(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

func ptr[T any](v T) *T {
	return &v
}
