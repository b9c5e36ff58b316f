// Package story 编排章节与大纲的流式生成
package story

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	apperrors "dreamwriter-api/pkg/errors"
	"dreamwriter-api/pkg/metrics"
)

// FrameKind 帧类型
type FrameKind int

const (
	// FrameToken 增量文本
	FrameToken FrameKind = iota
	// FrameError 带内错误，之后仍会发送 FrameDone
	FrameError
	// FrameDone 结束标记，每次生成恰好一个
	FrameDone
)

// Frame 推送给客户端的一帧
type Frame struct {
	Kind FrameKind
	Text string
}

// TokenFrame 构造文本帧
func TokenFrame(text string) Frame { return Frame{Kind: FrameToken, Text: text} }

// ErrorFrame 构造错误帧
func ErrorFrame(msg string) Frame { return Frame{Kind: FrameError, Text: msg} }

// DoneFrame 构造结束帧
func DoneFrame() Frame { return Frame{Kind: FrameDone} }

// FrameWriter 帧输出端，返回错误表示客户端已断开
type FrameWriter interface {
	WriteFrame(f Frame) error
}

// FrameWriterFunc 函数适配器
type FrameWriterFunc func(f Frame) error

func (fn FrameWriterFunc) WriteFrame(f Frame) error { return fn(f) }

// errClientGone 包装写帧失败
type errClientGone struct{ err error }

func (e *errClientGone) Error() string { return "client gone: " + e.err.Error() }
func (e *errClientGone) Unwrap() error { return e.err }

// IsClientGone 判断错误是否由客户端断开引起
func IsClientGone(err error) bool {
	var gone *errClientGone
	return errors.As(err, &gone)
}

// relay 逐条读取上游流并转发非空文本，返回累积的全文
// 上游出错时返回已累积内容与该错误
func relay(kind string, sr *schema.StreamReader[*schema.Message], w FrameWriter) (string, error) {
	defer sr.Close()

	var sb strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		if msg == nil || msg.Content == "" {
			continue
		}

		sb.WriteString(msg.Content)
		if err := w.WriteFrame(TokenFrame(msg.Content)); err != nil {
			return sb.String(), &errClientGone{err: err}
		}
		metrics.GenerationTokenFrames.WithLabelValues(kind).Inc()
	}
}

// finish 发送错误帧（如有）与结束帧
func finish(w FrameWriter, genErr error) error {
	if genErr != nil {
		if err := w.WriteFrame(ErrorFrame(errorText(genErr))); err != nil {
			return &errClientGone{err: err}
		}
	}
	if err := w.WriteFrame(DoneFrame()); err != nil {
		return &errClientGone{err: err}
	}
	return nil
}

// errorText 业务错误只取消息文本，其余错误原样输出
func errorText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Err == nil {
		return appErr.Message
	}
	return err.Error()
}

// contextError 客户端断开时 ctx 已取消，不再尝试写帧
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &errClientGone{err: err}
	}
	return nil
}
