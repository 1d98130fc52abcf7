package ai

import (
	"fmt"
	"strings"
	"unicode"
)

const translateSystemPrompt = `You are a professional translator. Translate the following text to %s. Return ONLY the translation without any additional text, explanations, or formatting. Preserve the structure if there are multiple lines or paragraphs.`

const subtaskSystemPrompt = `You are a helpful assistant that breaks down tasks into actionable subtasks. Always respond with valid JSON array format. Generate subtasks in %s language.`

const subtaskPromptTemplate = `Break down the following task into 3-5 specific, actionable subtasks that would help complete the main task. Each subtask should be:
- Clear and specific
- Actionable (something you can actually do)
- Independent (can be completed on its own)
- Measurable (you'll know when it's done)

Main Task: %s
%s
IMPORTANT: Generate all subtasks in %s. If the main task is in %s, the subtasks should also be in %s.

Return your response as a JSON array of strings, with each string being a subtask title in %s. Do not include any other text or formatting.

Example format: ["Subtask 1", "Subtask 2", "Subtask 3"]`

func buildTranslateSystemPrompt(targetLanguage string) string {
	return fmt.Sprintf(translateSystemPrompt, targetLanguage)
}

func buildSubtaskSystemPrompt(targetLanguage string) string {
	return fmt.Sprintf(subtaskSystemPrompt, targetLanguage)
}

// BuildSubtaskPrompt assembles the user prompt for subtask generation.
func BuildSubtaskPrompt(title, description, targetLanguage string) string {
	descLine := ""
	if description != "" {
		descLine = "Description: " + description + "\n"
	}
	return fmt.Sprintf(subtaskPromptTemplate,
		title, descLine,
		targetLanguage, targetLanguage, targetLanguage, targetLanguage)
}

// DisplayLanguage normalizes a stored language key ("spanish",
// "français", "en") to the display name the prompts expect.
func DisplayLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "en", "english":
		return "English"
	case "spanish", "español":
		return "Spanish"
	case "french", "français":
		return "French"
	}

	runes := []rune(strings.TrimSpace(language))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ValidateAPIKey reports whether a key has the expected "sk-" prefix
// format. It says nothing about whether the key is actually valid
// upstream.
func ValidateAPIKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	return apiKey != "" && strings.HasPrefix(apiKey, "sk-")
}
