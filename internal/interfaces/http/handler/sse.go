package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/application/story"
)

const (
	sseErrorPrefix = "[Error] "
	sseDone        = "[DONE]"
)

// sseWriter 通过 gin-contrib/sse 将生成帧写为 text/event-stream 的 data 行，每帧立即 flush
type sseWriter struct {
	ctx context.Context
	w   gin.ResponseWriter
	buf bytes.Buffer
}

// newSSEWriter 写出流式响应头
func newSSEWriter(c *gin.Context) *sseWriter {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	return &sseWriter{ctx: c.Request.Context(), w: c.Writer}
}

// WriteFrame 实现 story.FrameWriter
// data 中的换行由 sse 编码为续行 data:
func (s *sseWriter) WriteFrame(f story.Frame) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	payload, err := framePayload(f)
	if err != nil {
		return err
	}

	s.buf.Reset()
	if err := sse.Encode(&s.buf, sse.Event{Data: payload}); err != nil {
		return err
	}
	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// framePayload 生成 data 字段内容，以空格开头得到 "data: ..." 形式
func framePayload(f story.Frame) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte(' ')
	switch f.Kind {
	case story.FrameToken:
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(tokenPayload{Text: f.Text}); err != nil {
			return nil, err
		}
		// Encode 自带换行
		b.Truncate(b.Len() - 1)
	case story.FrameError:
		b.WriteString(sseErrorPrefix)
		b.WriteString(f.Text)
	case story.FrameDone:
		b.WriteString(sseDone)
	}
	return b.Bytes(), nil
}

type tokenPayload struct {
	Text string `json:"text"`
}
