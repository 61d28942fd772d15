package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.CaptureBackend != "robotgo" {
		t.Errorf("默认截图后端应为 robotgo, 实际为 %s", s.CaptureBackend)
	}
	if s.OCREngine != EnginePaddle {
		t.Errorf("默认 OCR 引擎应为 paddle, 实际为 %s", s.OCREngine)
	}
	if s.ScaleFactor != 2 {
		t.Errorf("默认放大倍数应为 2, 实际为 %v", s.ScaleFactor)
	}
	if time.Duration(s.Timeout) != 3*time.Second {
		t.Errorf("默认超时应为 3s, 实际为 %v", time.Duration(s.Timeout))
	}
	if err := s.Validate(); err != nil {
		t.Errorf("默认配置应合法: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"未知截图后端", func(s *Settings) { s.CaptureBackend = "x11grab" }},
		{"未知 OCR 引擎", func(s *Settings) { s.OCREngine = "easyocr" }},
		{"放大倍数过小", func(s *Settings) { s.ScaleFactor = 0.5 }},
		{"阈值越界", func(s *Settings) { s.RawThreshold = 1.5 }},
		{"负超时", func(s *Settings) { s.Timeout = Duration(-time.Second) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			if err := s.Validate(); err == nil {
				t.Error("应返回错误")
			}
		})
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	s := DefaultSettings()
	s.CaptureBackend = "screenshot"
	s.OCREngine = EngineTesseract
	s.TesseractLanguages = []string{"eng", "chi_sim"}
	s.Timeout = Duration(1500 * time.Millisecond)
	s.OCR.DetModelPath = "/opt/models/det.onnx"

	if err := manager.Save(s); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if loaded.CaptureBackend != "screenshot" || loaded.OCREngine != EngineTesseract {
		t.Errorf("后端不匹配: %+v", loaded)
	}
	if time.Duration(loaded.Timeout) != 1500*time.Millisecond {
		t.Errorf("Timeout 不匹配: %v", time.Duration(loaded.Timeout))
	}
	if len(loaded.TesseractLanguages) != 2 || loaded.OCR.DetModelPath != "/opt/models/det.onnx" {
		t.Errorf("OCR 配置不匹配: %+v", loaded)
	}

	t.Logf("加载的配置: %+v", loaded)
}

func TestManagerLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	data := []byte(`{"ocr_engine": "tesseract", "poll_interval": 120}`)
	if err := os.WriteFile(manager.GetConfigFile(), data, 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if loaded.OCREngine != EngineTesseract {
		t.Errorf("OCREngine = %s", loaded.OCREngine)
	}
	if time.Duration(loaded.PollInterval) != 120*time.Millisecond {
		t.Errorf("毫秒数应解析为时长, got %v", time.Duration(loaded.PollInterval))
	}
	if loaded.ScaleFactor != 2 || loaded.CaptureBackend != "robotgo" {
		t.Errorf("缺失字段应保持默认值: %+v", loaded)
	}
}

func TestManagerClear(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if err := manager.Save(DefaultSettings()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	manager := NewManagerWithDir(dir)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("not valid json"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	s, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if s == nil {
		t.Error("即使出错也应返回默认配置")
	}
}

func TestDefaultManager(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, ".zoey-locator")

	if dir := GetDefaultManager().GetConfigDir(); dir != expected {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expected, dir)
	}
}

func TestOCRConfigMergesDefaults(t *testing.T) {
	s := DefaultSettings()
	s.OCR.DictPath = "/opt/dict.txt"

	cfg := s.OCRConfig()
	if cfg.DictPath != "/opt/dict.txt" {
		t.Errorf("DictPath = %s", cfg.DictPath)
	}
	if cfg.DetModelPath == "" || cfg.OnnxRuntimeLibPath == "" {
		t.Errorf("未设置的路径应使用默认值: %+v", cfg)
	}
}
