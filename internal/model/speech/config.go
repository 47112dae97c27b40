package speech

// SpeechConfig 语音识别服务配置
type SpeechConfig struct {
	// Deepgram 配置
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl"` // https 形式，连接时转换为 wss

	// ASR 配置
	ASRModel       string `json:"asrModel"`
	ASRLanguage    string `json:"asrLanguage"`
	SmartFormat    bool   `json:"smartFormat"`
	InterimResults bool   `json:"interimResults"`

	// 通用配置
	Timeout int `json:"timeout"` // seconds
}
