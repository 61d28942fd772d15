// Package tesseract 基于 Tesseract 的离线文字识别，作为 PaddleOCR 的替代引擎
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/vision/ocr"
)

// Recognizer Tesseract 识别器，每次识别使用独立的 client
type Recognizer struct {
	languages []string
	mu        sync.Mutex
}

// New 创建识别器，languages 为空时使用 Tesseract 默认语言
func New(languages ...string) *Recognizer {
	return &Recognizer{languages: languages}
}

// Recognize 按单词识别图像中的文字
func (r *Recognizer) Recognize(img image.Image) ([]ocr.Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码图像失败: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(r.languages) > 0 {
		if err := client.SetLanguage(r.languages...); err != nil {
			return nil, fmt.Errorf("设置识别语言失败: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("设置图像失败: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		logger.LogEvent("TESS", false, time.Since(start), "识别失败")
		return nil, fmt.Errorf("tesseract 识别失败: %w", err)
	}

	fragments := make([]ocr.Fragment, 0, len(boxes))
	for _, b := range boxes {
		fragments = append(fragments, toFragment(b.Word, b.Confidence, b.Box))
	}

	logger.LogEvent("TESS", true, time.Since(start), fmt.Sprintf("识别到 %d 个单词", len(fragments)))
	return fragments, nil
}

// toFragment Tesseract 置信度已是 0-100
func toFragment(word string, confidence float64, box image.Rectangle) ocr.Fragment {
	conf := int(confidence)
	if conf < 0 {
		conf = 0
	} else if conf > 100 {
		conf = 100
	}
	return ocr.Fragment{
		Text:       word,
		Confidence: conf,
		Left:       box.Min.X,
		Top:        box.Min.Y,
		Width:      box.Dx(),
		Height:     box.Dy(),
	}
}
