package genai

import (
	"fmt"
	"strings"

	"github.com/schemebot/schemebot/internal/i18n"
	"github.com/schemebot/schemebot/internal/models"
)

// intentSystemPrompt describes the closed intent label set to the model.
func intentSystemPrompt(language string) string {
	if language == i18n.LanguageHindi {
		return `आप एक स्कीमबॉट के लिए इरादा पहचान प्रणाली हैं जो उपयोगकर्ताओं को सरकारी योजनाएँ खोजने में मदद करता है।
उपयोगकर्ता के संदेश का विश्लेषण करें और निम्न विकल्पों में से उनके इरादे का निर्धारण करें:

- greeting: उपयोगकर्ता अभिवादन कर रहा है या बातचीत शुरू कर रहा है
- provide_info: उपयोगकर्ता अपने बारे में जानकारी प्रदान कर रहा है
- request_recommendations: उपयोगकर्ता स्पष्ट रूप से योजना सिफारिशें मांग रहा है
- restart: उपयोगकर्ता बातचीत को फिर से शुरू करना चाहता है
- ask_specific_scheme: उपयोगकर्ता किसी विशिष्ट योजना के बारे में पूछ रहा है
- other: उपरोक्त में से कोई नहीं

केवल इरादे का नाम वापस करें, और कुछ नहीं।

ध्यान दें: उपयोगकर्ता हिंदी या हिंग्लिश में बातचीत कर सकता है (हिंदी शब्द अंग्रेजी लिपि में लिखे गए)। आपको दोनों प्रकार के इनपुट को समझना होगा।`
	}
	return `You are an intent detection system for a conversational bot that helps users find government schemes.
Analyze the user's message and determine their intent from the following options:

- greeting: User is greeting or starting a conversation
- provide_info: User is providing information about themselves
- request_recommendations: User is explicitly asking for scheme recommendations
- restart: User wants to restart the conversation
- ask_specific_scheme: User is asking about a specific scheme
- other: None of the above

Return only the intent name, nothing else.`
}

// intentUserPrompt assembles the classification context: dialogue state,
// per-field completion, recent history, and the new message.
func intentUserPrompt(req IntentRequest) string {
	yes, no := "Yes", "No"
	if req.Language == i18n.LanguageHindi {
		yes, no = "हां", "नहीं"
	}
	answer := func(collected bool) string {
		if collected {
			return yes
		}
		return no
	}

	var history strings.Builder
	for _, msg := range req.Recent {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Bot"
		}
		fmt.Fprintf(&history, "%s: %s\n", role, msg.Content)
	}

	return fmt.Sprintf(`Current bot state: %s

User information collected:
- Name: %s
- Gender: %s
- Age: %s
- State: %s

Recent conversation:
%s
User message: %q

What is the user's intent?`,
		req.State,
		answer(req.Collected[models.FieldName]),
		answer(req.Collected[models.FieldGender]),
		answer(req.Collected[models.FieldAge]),
		answer(req.Collected[models.FieldState]),
		history.String(),
		req.Message,
	)
}

// extractionSystemPrompt instructs the model to pull one field out of the
// conversation, with Hindi/Hinglish guidance when the session runs in Hindi.
func extractionSystemPrompt(field models.Field, language string) string {
	prompt := fmt.Sprintf(`You are an information extraction assistant specialized in bilingual (Hindi-English) processing.
Your task is to extract the user's %s from the conversation history.

Return your response as a JSON object with these fields:
1. "value": The extracted %s (string)
2. "confidence": Your confidence in the extraction (float between 0 and 1)

If you cannot find the information, return an empty string for value and 0 for confidence.`, field, field)

	if language == i18n.LanguageHindi {
		prompt += `

IMPORTANT: The user may be communicating in Hindi or Hinglish (Hindi words written in English script).
You must be able to understand both and extract the information correctly.

Examples for Hinglish understanding:
- "Mera naam Rahul hai" -> Name: "Rahul"
- "Main 25 saal ka hoon" -> Age: "25"
- "Main Dilli mein rehta hoon" -> State: "Delhi"
- "Main ladka hoon" -> Gender: "Male"

Examples for Hindi understanding:
- "मेरा नाम राहुल है" -> Name: "राहुल"
- "मेरी उम्र 25 साल है" -> Age: "25"
- "मैं दिल्ली में रहता हूँ" -> State: "Delhi"
- "मैं पुरुष हूँ" -> Gender: "Male"

Always normalize state names to standard Indian state names in English.
Always normalize gender to "Male", "Female", or "Other" in English.
Always normalize age to a number.
Names can be kept in the original language (Hindi script if provided in Hindi).`
	}
	return prompt
}

var validationInstructions = map[models.Field]string{
	models.FieldName:   "Return the proper name with correct capitalization. Invalid cases include empty strings or non-name text.",
	models.FieldGender: "Normalize to 'Male', 'Female', or 'Other'. Map words like 'boy', 'man', 'M' to 'Male'; 'girl', 'woman', 'F' to 'Female'; etc.",
	models.FieldAge:    "Convert to an integer between 0 and 120. Return -1 if invalid.",
	models.FieldState:  "Normalize to a proper Indian state/UT name with correct spelling and capitalization. Correct common misspellings like 'delha' to 'Delhi'.",
}

var validationHinglishExamples = map[models.Field]string{
	models.FieldName:   "Examples: 'Mera naam Rahul hai' → 'Rahul', 'मेरा नाम अनिल है' → 'अनिल'",
	models.FieldGender: "Examples: 'Main ladka hoon' → 'Male', 'मैं महिला हूँ' → 'Female'",
	models.FieldAge:    "Examples: 'Meri umar 25 saal hai' → 25, 'मैं 30 वर्ष का हूँ' → 30",
	models.FieldState:  "Examples: 'Main dilli mein rehta hoon' → 'Delhi', 'मैं महाराष्ट्र से हूँ' → 'Maharashtra'",
}

// validationSystemPrompt builds the fallback validation prompt for a field.
func validationSystemPrompt(field models.Field, language string) string {
	instructions := validationInstructions[field]
	if language == i18n.LanguageHindi {
		if examples, ok := validationHinglishExamples[field]; ok {
			instructions = instructions + "\n" + examples
		}
	}

	return fmt.Sprintf(`You are a validation system for user information.
You will be given a value for %s and need to determine if it's valid.

%s

Return a JSON object with:
1. "valid": boolean indicating if the value is valid
2. "normalized_value": the normalized value if valid, null if invalid`, field, instructions)
}
