package utils

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidDriveLink = errors.New("lien Google Drive invalide")

var (
	driveFolderPattern  = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)
	driveFilePattern    = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveIDParamPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	driveSplitPattern   = regexp.MustCompile(`[/?&]`)
)

// DriveLink Google Drive 链接解析结果
type DriveLink struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	IsFile bool   `json:"is_file"`
}

// ExtractDriveID 从 Google Drive 链接中提取 ID，空输入返回 nil
func ExtractDriveID(raw string) (*DriveLink, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	link := &DriveLink{}
	if m := driveFolderPattern.FindStringSubmatch(trimmed); m != nil {
		link.ID = m[1]
	} else if m := driveFilePattern.FindStringSubmatch(trimmed); m != nil {
		link.ID = m[1]
		link.IsFile = true
	} else if m := driveIDParamPattern.FindStringSubmatch(trimmed); m != nil {
		link.ID = m[1]
	} else {
		// 没有匹配到已知格式时，取最后一段足够长的内容
		parts := driveSplitPattern.Split(trimmed, -1)
		if last := parts[len(parts)-1]; len(last) >= 25 {
			link.ID = last
		}
	}

	if len(link.ID) < 10 {
		return nil, ErrInvalidDriveLink
	}
	link.URL = "https://drive.google.com/drive/folders/" + link.ID
	return link, nil
}
