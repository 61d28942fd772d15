package permissions

// Instructions 缺少权限时的提示，权限已授予返回空字符串
func Instructions() string {
	if CanCapture() {
		return ""
	}
	return "需要屏幕录制权限才能截屏和识别:\n" +
		"  系统设置 > 隐私与安全性 > 屏幕录制\n" +
		"授权后需要重启应用才能生效。"
}
