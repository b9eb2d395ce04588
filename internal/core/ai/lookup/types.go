package lookup

// Message chat 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest chat completion 請求
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

// chatResponse chat completion 響應外層
type chatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// apiError 服務端錯誤結構；code 可能為字串或 null
type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// dishPayload 模型回覆內容（第二層 JSON）
type dishPayload struct {
	Found       *bool    `json:"found"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ChineseName string   `json:"chineseName"`
	Description string   `json:"description"`
	Allergens   []string `json:"allergens"`
	Ingredients []string `json:"ingredients"`
	Region      string   `json:"region"`
}
