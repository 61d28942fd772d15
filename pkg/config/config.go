// Package config 管理定位器配置: JSON 配置文件 + .env / 环境变量覆盖
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zoeyai/zoeylocator/pkg/vision/ocr"
)

// OCR 引擎名称
const (
	EnginePaddle    = "paddle"
	EngineTesseract = "tesseract"
)

// Duration JSON 中以 "3s"、"150ms" 形式保存的时长
type Duration time.Duration

// MarshalJSON 实现 json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON 同时接受时长字符串和毫秒数
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("无效的时长 %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("无效的时长: %s", data)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// Settings 定位器配置
type Settings struct {
	// CaptureBackend 截图后端: robotgo / screenshot
	CaptureBackend string `json:"capture_backend"`
	// OCREngine OCR 引擎: paddle / tesseract
	OCREngine string `json:"ocr_engine"`
	// OCR PaddleOCR 模型路径，空字段使用默认查找路径
	OCR ocr.Config `json:"ocr"`
	// TesseractLanguages tesseract 识别语言
	TesseractLanguages []string `json:"tesseract_languages,omitempty"`
	// ScaleFactor OCR 前的放大倍数
	ScaleFactor float64 `json:"scale_factor"`
	// Timeout 等待结果稳定的超时
	Timeout Duration `json:"timeout"`
	// PollInterval 轮询间隔
	PollInterval Duration `json:"poll_interval"`
	// RawThreshold 模板匹配灰度相似度下限
	RawThreshold float64 `json:"raw_threshold"`
	LogLevel     string  `json:"log_level"`
	LogFile      string  `json:"log_file,omitempty"`
}

// DefaultSettings 默认配置
func DefaultSettings() *Settings {
	return &Settings{
		CaptureBackend: "robotgo",
		OCREngine:      EnginePaddle,
		ScaleFactor:    ocr.DefaultScale,
		Timeout:        Duration(3 * time.Second),
		PollInterval:   Duration(50 * time.Millisecond),
		RawThreshold:   0.8,
		LogLevel:       "info",
	}
}

// Validate 检查配置取值
func (s *Settings) Validate() error {
	switch s.CaptureBackend {
	case "", "robotgo", "screenshot":
	default:
		return fmt.Errorf("不支持的截图后端: %s", s.CaptureBackend)
	}
	switch s.OCREngine {
	case "", EnginePaddle, EngineTesseract:
	default:
		return fmt.Errorf("不支持的 OCR 引擎: %s", s.OCREngine)
	}
	if s.ScaleFactor < 1 {
		return fmt.Errorf("放大倍数必须 >= 1: %v", s.ScaleFactor)
	}
	if s.RawThreshold <= 0 || s.RawThreshold > 1 {
		return fmt.Errorf("匹配阈值必须在 (0, 1] 内: %v", s.RawThreshold)
	}
	if s.Timeout < 0 || s.PollInterval < 0 {
		return fmt.Errorf("超时和轮询间隔不能为负")
	}
	return nil
}

// OCRConfig 合并默认模型路径
func (s *Settings) OCRConfig() ocr.Config {
	cfg := ocr.DefaultConfig()
	if s.OCR.OnnxRuntimeLibPath != "" {
		cfg.OnnxRuntimeLibPath = s.OCR.OnnxRuntimeLibPath
	}
	if s.OCR.DetModelPath != "" {
		cfg.DetModelPath = s.OCR.DetModelPath
	}
	if s.OCR.RecModelPath != "" {
		cfg.RecModelPath = s.OCR.RecModelPath
	}
	if s.OCR.DictPath != "" {
		cfg.DictPath = s.OCR.DictPath
	}
	return cfg
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置保存在 ~/.zoey-locator
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".zoey-locator"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// Load 加载配置，文件不存在时返回默认配置
// 文件中缺少的字段保持默认值
func (m *Manager) Load() (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.configFile)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	return settings, nil
}

// Save 保存配置
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.configFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除配置文件失败: %w", err)
	}
	return nil
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*Settings, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(settings *Settings) error {
	return defaultManager.Save(settings)
}
