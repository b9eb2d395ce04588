package lookup

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a Chinese cuisine expert who analyzes dishes for allergen content. ` +
	`Provide information about Chinese dishes in JSON format.`

// buildUserPrompt 組出要求嚴格 JSON 回覆的使用者指令
func buildUserPrompt(dishName string, allergenIDs []string) string {
	return fmt.Sprintf(`Analyze the Chinese dish "%s".
Return ONLY a JSON object with these fields:
- id: a unique identifier (kebab-case)
- name: the dish name in English
- chineseName: the dish name in Chinese (if known)
- description: a brief description
- allergens: an array of allergens from this list: %s
- ingredients: an array of main ingredients
- region: the regional cuisine (if known)

If the dish is not a Chinese dish or you don't know it, return {"found": false}.
Do not include any text before or after the JSON.`, dishName, strings.Join(allergenIDs, ", "))
}

func buildMessages(dishName string, allergenIDs []string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(dishName, allergenIDs)},
	}
}
