package guard

type Request struct {
	Prompt string  `json:"prompt"`
	Config *Config `json:"config,omitempty"`
}

type Config struct {
	DetectInjection bool     `json:"detect_injection"`
	RedactPII       bool     `json:"redact_pii"`
	DetectToxicity  bool     `json:"detect_toxicity"`
	BlockTopics     []string `json:"block_topics,omitempty"`
}

// DefaultConfig matches the behaviour when a request carries no config block.
func DefaultConfig() *Config {
	return &Config{
		DetectInjection: true,
		RedactPII:       true,
		DetectToxicity:  false,
	}
}

// Result is the caller-visible verdict. SanitizedPrompt always carries the
// PII-redacted text, on blocked outcomes included, so raw PII never leaves
// the service.
type Result struct {
	Safe            bool     `json:"safe"`
	Score           float64  `json:"score"`
	SanitizedPrompt string   `json:"sanitized_prompt,omitempty"`
	Reason          *string  `json:"reason,omitempty"`
	PIIDetected     []string `json:"pii_detected"`
}

// StageResult is the shared verdict contract for all detector stages.
// MutatedText is set only by stages that rewrite content.
type StageResult struct {
	Passed      bool
	Reason      string
	Score       float64
	MutatedText *string
	Labels      []string
}
