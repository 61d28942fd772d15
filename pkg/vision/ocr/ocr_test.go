package ocr

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

type fakeRecognizer struct {
	fragments []Fragment
	err       error
	got       image.Rectangle
}

func (f *fakeRecognizer) Recognize(img image.Image) ([]Fragment, error) {
	f.got = img.Bounds()
	return f.fragments, f.err
}

func TestUpscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))

	if got := Upscale(img, 2).Bounds(); got.Dx() != 80 || got.Dy() != 60 {
		t.Errorf("放大 2 倍后尺寸 = %v", got)
	}
	if got := Upscale(img, 1); got != image.Image(img) {
		t.Error("倍数 1 应原样返回")
	}
}

func TestRecognizeCapture(t *testing.T) {
	region := target.Region{Left: 200, Top: 100, Width: 50, Height: 20}
	capture := target.NewCapture(image.NewRGBA(image.Rect(0, 0, 50, 20)), region)
	rec := &fakeRecognizer{fragments: []Fragment{
		{Text: "Submit", Confidence: 90, Left: 20, Top: 10, Width: 60, Height: 20},
	}}

	res, err := RecognizeCapture(rec, capture, 2)
	if err != nil {
		t.Fatalf("RecognizeCapture 失败: %v", err)
	}
	if rec.got.Dx() != 100 || rec.got.Dy() != 40 {
		t.Errorf("识别图像应放大到 100x40, got %v", rec.got)
	}
	if res.Region != region || res.Scale != 2 {
		t.Errorf("结果区域/倍数错误: %+v", res)
	}

	got, err := ResolveText(res, "Submit", res.Scale, 0, 0)
	if err != nil {
		t.Fatalf("ResolveText 失败: %v", err)
	}
	if got != (target.Point{X: 225, Y: 110}) {
		t.Errorf("坐标 = %v, want (225, 110)", got)
	}
}

func TestRecognizeCaptureHiDPI(t *testing.T) {
	// Retina: 50x20 的区域截出 100x40 像素，再放大 2 倍识别
	region := target.Region{Left: 200, Top: 100, Width: 50, Height: 20}
	capture := target.NewCapture(image.NewRGBA(image.Rect(0, 0, 100, 40)), region)
	rec := &fakeRecognizer{fragments: []Fragment{
		{Text: "Submit", Confidence: 90, Left: 40, Top: 20, Width: 120, Height: 40},
	}}

	res, err := RecognizeCapture(rec, capture, 2)
	if err != nil {
		t.Fatalf("RecognizeCapture 失败: %v", err)
	}
	if rec.got.Dx() != 200 || rec.got.Dy() != 80 {
		t.Errorf("识别图像应放大到 200x80, got %v", rec.got)
	}
	if res.Scale != 4 {
		t.Errorf("总倍数 = %v, want 4", res.Scale)
	}

	got, err := ResolveText(res, "Submit", res.Scale, 0, 0)
	if err != nil {
		t.Fatalf("ResolveText 失败: %v", err)
	}
	if got != (target.Point{X: 225, Y: 110}) {
		t.Errorf("坐标 = %v, want (225, 110)", got)
	}
}

func TestRecognizeCaptureFailures(t *testing.T) {
	capture := target.NewCapture(image.NewRGBA(image.Rect(0, 0, 10, 10)), target.Region{})

	_, err := RecognizeCapture(&fakeRecognizer{err: errors.New("engine crashed")}, capture, 2)
	if !target.IsCollaboratorFailure(err) {
		t.Errorf("识别失败应为协作方错误: %v", err)
	}

	_, err = RecognizeCapture(nil, capture, 2)
	if target.ReasonOf(err) != target.ReasonCollaboratorFailure {
		t.Errorf("未配置引擎应为协作方错误: %v", err)
	}
}

func TestScoreToConfidence(t *testing.T) {
	tests := map[float64]int{
		-0.1:  0,
		0:     0,
		0.415: 41,
		0.999: 99,
		1.2:   100,
	}
	for in, want := range tests {
		if got := scoreToConfidence(in); got != want {
			t.Errorf("scoreToConfidence(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestConfigMissing(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		OnnxRuntimeLibPath: filepath.Join(dir, "libonnxruntime.so"),
		DetModelPath:       filepath.Join(dir, "det.onnx"),
		RecModelPath:       filepath.Join(dir, "rec.onnx"),
		DictPath:           filepath.Join(dir, "dict.txt"),
	}
	if cfg.IsAvailable() {
		t.Fatal("模型文件不存在时不应可用")
	}

	for _, p := range []string{cfg.OnnxRuntimeLibPath, cfg.DetModelPath, cfg.RecModelPath} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	missing := cfg.Missing()
	if len(missing) != 1 || missing[0] != cfg.DictPath {
		t.Errorf("Missing = %v, want [%s]", missing, cfg.DictPath)
	}

	if _, err := NewPaddleRecognizer(cfg); err == nil {
		t.Error("缺少模型文件时创建识别器应失败")
	}
}

func TestPaddleRecognizer(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsAvailable() {
		t.Skipf("OCR 模型不可用: %v", cfg.Missing())
	}

	rec, err := NewPaddleRecognizer(cfg)
	if err != nil {
		t.Fatalf("创建识别器失败: %v", err)
	}
	defer rec.Close()

	if _, err := rec.Recognize(image.NewRGBA(image.Rect(0, 0, 100, 40))); err != nil {
		t.Errorf("识别空白图像失败: %v", err)
	}
}
