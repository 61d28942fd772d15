package screen

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Encode 将截图编码为图像数据
// format: "png" 或 "jpeg"，默认 "png"（无损，便于重新作为模板使用）
// quality: JPEG 质量 1-100，默认 80
func Encode(capture *target.Capture, format string, quality int) ([]byte, error) {
	if capture == nil {
		return nil, fmt.Errorf("截图为空")
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	img := capture.Image()

	switch strings.ToLower(format) {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("PNG 编码失败: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("JPEG 编码失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的图像格式: %s", format)
	}

	return buf.Bytes(), nil
}

// Save 按扩展名保存截图
func Save(path string, capture *target.Capture) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Encode(capture, format, 0)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("保存截图失败: %w", err)
	}
	return nil
}
