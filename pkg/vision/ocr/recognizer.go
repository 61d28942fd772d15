package ocr

import (
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	goocr "github.com/getcharzp/go-ocr"

	"github.com/zoeyai/zoeylocator/internal/logger"
)

// PaddleRecognizer 基于 go-ocr PaddleOCR 的识别器
// 引擎不可重入，调用串行化
type PaddleRecognizer struct {
	engine goocr.Engine
	config Config
	mu     sync.Mutex
}

// NewPaddleRecognizer 加载模型并创建识别器
func NewPaddleRecognizer(config Config) (*PaddleRecognizer, error) {
	if missing := config.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("OCR 模型文件不存在: %v", missing)
	}

	engine, err := goocr.NewPaddleOcrEngine(goocr.Config{
		OnnxRuntimeLibPath: config.OnnxRuntimeLibPath,
		DetModelPath:       config.DetModelPath,
		RecModelPath:       config.RecModelPath,
		DictPath:           config.DictPath,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OCR 引擎失败: %w", err)
	}

	logger.Info("OCR 引擎初始化成功")
	return &PaddleRecognizer{engine: engine, config: config}, nil
}

// Recognize 识别图像中的所有文字
func (r *PaddleRecognizer) Recognize(img image.Image) ([]Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine == nil {
		return nil, fmt.Errorf("OCR 引擎已关闭")
	}

	start := time.Now()
	results, err := r.engine.RunOCR(img)
	if err != nil {
		logger.LogEvent("OCR", false, time.Since(start), "识别失败")
		return nil, fmt.Errorf("OCR 识别失败: %w", err)
	}

	fragments := make([]Fragment, 0, len(results))
	for _, res := range results {
		fragments = append(fragments, convertResult(res))
	}

	logger.LogEvent("OCR", true, time.Since(start), fmt.Sprintf("识别到 %d 个文本", len(fragments)))
	return fragments, nil
}

// Close 释放引擎
func (r *PaddleRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		r.engine.Destroy()
		r.engine = nil
	}
	return nil
}

// convertResult go-ocr 结果: Box [4]int{x1, y1, x2, y2}, Score 0-1
func convertResult(res goocr.RecResult) Fragment {
	box := res.Box
	return Fragment{
		Text:       res.Text,
		Confidence: scoreToConfidence(float64(res.Score)),
		Left:       box[0],
		Top:        box[1],
		Width:      box[2] - box[0],
		Height:     box[3] - box[1],
	}
}

// scoreToConfidence 0-1 得分截断为 0-100 整数
func scoreToConfidence(score float64) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= 1 {
		return 100
	}
	return int(score * 100)
}
