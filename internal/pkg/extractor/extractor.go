// Package extractor 从模板文件中提取 {{变量}} 占位符
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/maitrisea/backend/internal/model"
)

var (
	ErrNoContent         = errors.New("no template content to analyze")
	ErrUnsupportedFormat = errors.New("unsupported template file format")
	ErrTooLarge          = errors.New("template file exceeds size limit")
)

const (
	// DefaultTimeout 下载模板文件的默认超时
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBytes 模板文件大小上限
	DefaultMaxBytes int64 = 10 << 20
)

var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// zip 容器（docx 等）的文件头
var zipMagic = []byte("PK\x03\x04")

// Variables 返回文本中去重、去空白后的变量名，按首次出现排序
func Variables(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return model.UniqueStrings(names)
}

// Extractor 分析模板文件内容。content 为空时按 fileURL 下载
type Extractor interface {
	Extract(ctx context.Context, fileURL string, content []byte) ([]string, error)
}

// TextExtractor 只识别纯文本内容
type TextExtractor struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewTextExtractor httpClient 为空时使用带 DefaultTimeout 的客户端，maxBytes <= 0 时使用 DefaultMaxBytes
func NewTextExtractor(httpClient *http.Client, maxBytes int64) *TextExtractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &TextExtractor{httpClient: httpClient, maxBytes: maxBytes}
}

func (e *TextExtractor) Extract(ctx context.Context, fileURL string, content []byte) ([]string, error) {
	if len(content) == 0 {
		if !strings.HasPrefix(fileURL, "http://") && !strings.HasPrefix(fileURL, "https://") {
			return nil, ErrNoContent
		}
		var err error
		content, err = e.download(ctx, fileURL)
		if err != nil {
			return nil, err
		}
	}
	if int64(len(content)) > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(content))
	}
	if bytes.HasPrefix(content, zipMagic) {
		return nil, ErrUnsupportedFormat
	}
	return Variables(string(content)), nil
}

func (e *TextExtractor) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download template file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download template file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, e.maxBytes)
	}
	return data, nil
}
