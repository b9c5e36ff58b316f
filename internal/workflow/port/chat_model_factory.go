package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ModelSpec 单次请求使用的上游模型参数，由调用方提供
type ModelSpec struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
type ChatModelFactory interface {
	NewChatModel(ctx context.Context, spec ModelSpec) (model.BaseChatModel, error)
}
