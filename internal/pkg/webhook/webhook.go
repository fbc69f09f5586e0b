// Package webhook 将文档生成请求推送到外部自动化平台
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrEmptyURL = errors.New("webhook url is empty")

// GenerationPayload 文档生成请求体
type GenerationPayload struct {
	ProjectID    string            `json:"project_id"`
	ProjectName  string            `json:"project_name"`
	ClientName   string            `json:"client_name"`
	Vars         map[string]string `json:"vars"`
	DocumentName string            `json:"document_name"`
}

// Sender 发送生成请求
type Sender interface {
	Send(ctx context.Context, url string, payload GenerationPayload) error
}

// Client 基于 net/http 的 Sender，不设超时也不重试
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) Send(ctx context.Context, url string, payload GenerationPayload) error {
	if url == "" {
		return ErrEmptyURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
