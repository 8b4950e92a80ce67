// Package i18n holds the fixed bilingual message templates and language
// helpers for SchemeBot. Unsupported language codes fall back to English
// templates; capability prompts receive the code unchanged.
package i18n

import (
	"fmt"

	"github.com/schemebot/schemebot/internal/models"
)

// Supported language codes.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
)

// SupportedLanguages lists the codes with dedicated templates.
var SupportedLanguages = []string{LanguageEnglish, LanguageHindi}

// MessageKey identifies a fixed message template.
type MessageKey string

const (
	MsgGreeting              MessageKey = "greeting"
	MsgGreetingQuestion      MessageKey = "greeting_question"
	MsgThankYou              MessageKey = "thank_you_message"
	MsgSkip                  MessageKey = "skip_message"
	MsgError                 MessageKey = "error_message"
	MsgNoRecommendations     MessageKey = "no_recommendations_message"
	MsgCompletedSystemPrompt MessageKey = "completed_system_prompt"
)

var templates = map[string]map[MessageKey]string{
	LanguageEnglish: {
		MsgGreeting:              "Hello! I'm SchemeBot, your assistant for finding Indian government schemes you may be eligible for. To provide personalized recommendations, I need to ask you a few questions.",
		MsgGreetingQuestion:      "Please tell me your name.",
		MsgThankYou:              "Thank you for providing all the information! Let me find some schemes that might be relevant for you.",
		MsgSkip:                  "I'm having trouble understanding your response. Let's move on to the next question.",
		MsgError:                 "I'm not sure how to respond to that. Can you please try rephrasing your question?",
		MsgNoRecommendations:     "Based on your information, I couldn't find any government schemes that match your profile. You might want to check official government websites for more information.",
		MsgCompletedSystemPrompt: "You are SchemeBot, a helpful assistant for Indian government schemes. The user has already received scheme recommendations, so provide information about specific schemes or answer questions they might have. Be concise and friendly in your response.",
	},
	LanguageHindi: {
		MsgGreeting:              "नमस्ते! मैं स्कीमबॉट हूँ, आपका सहायक जो आपको पात्र हो सकने वाली भारत सरकार की योजनाओं को खोजने में मदद करता है। व्यक्तिगत सिफारिशें प्रदान करने के लिए, मुझे आपसे कुछ प्रश्न पूछने होंगे।",
		MsgGreetingQuestion:      "कृपया मुझे अपना नाम बताएं।",
		MsgThankYou:              "सभी जानकारी प्रदान करने के लिए धन्यवाद! मुझे आपके लिए प्रासंगिक योजनाएँ खोजने दें।",
		MsgSkip:                  "मुझे आपके जवाब को समझने में परेशानी हो रही है। आइए अगले सवाल पर चलते हैं।",
		MsgError:                 "मुझे समझ नहीं आया। क्या आप अपना प्रश्न दोबारा बता सकते हैं?",
		MsgNoRecommendations:     "आपकी जानकारी के आधार पर, मुझे कोई ऐसी सरकारी योजना नहीं मिली जो आपके प्रोफ़ाइल से मेल खाती हो। अधिक जानकारी के लिए आप सरकारी वेबसाइटों की जांच कर सकते हैं।",
		MsgCompletedSystemPrompt: "आप स्कीमबॉट हैं, भारतीय सरकारी योजनाओं के लिए एक सहायक सहायक। उपयोगकर्ता को पहले से ही योजना सिफारिशें मिल चुकी हैं, इसलिए विशिष्ट योजनाओं के बारे में जानकारी प्रदान करें या उनके पास हो सकने वाले प्रश्नों के उत्तर दें। अपने उत्तर में संक्षिप्त और मित्रवत रहें। हमेशा हिंदी में उत्तर दें क्योंकि उपयोगकर्ता हिंदी में बातचीत कर रहा है।",
	},
}

var fieldQuestions = map[string]map[models.Field]string{
	LanguageEnglish: {
		models.FieldName:   "Please tell me your name.",
		models.FieldGender: "Are you male, female, or other?",
		models.FieldAge:    "What is your age?",
		models.FieldState:  "Which state in India do you live in?",
	},
	LanguageHindi: {
		models.FieldName:   "कृपया मुझे अपना नाम बताएं।",
		models.FieldGender: "क्या आप पुरुष हैं, महिला हैं, या अन्य हैं?",
		models.FieldAge:    "आपकी उम्र क्या है?",
		models.FieldState:  "आप भारत के किस राज्य में रहते हैं?",
	},
}

var fieldRetries = map[string]map[models.Field]string{
	LanguageEnglish: {
		models.FieldName:   "I'm having trouble understanding your name. Could you please tell me your name again?",
		models.FieldGender: "I'm having trouble understanding your gender. Please specify if you are male, female, or other.",
		models.FieldAge:    "I'm having trouble understanding your age. Please provide your age in years.",
		models.FieldState:  "I'm having trouble understanding your state. Please specify which state or union territory in India you live in.",
	},
	LanguageHindi: {
		models.FieldName:   "मुझे आपका नाम समझने में कठिनाई हो रही है। कृपया अपना नाम फिर से बताएं।",
		models.FieldGender: "मुझे आपका लिंग समझने में कठिनाई हो रही है। कृपया स्पष्ट करें कि आप पुरुष हैं, महिला हैं, या अन्य हैं।",
		models.FieldAge:    "मुझे आपकी उम्र समझने में कठिनाई हो रही है। कृपया अपनी उम्र वर्षों में बताएं।",
		models.FieldState:  "मुझे आपका राज्य समझने में कठिनाई हो रही है। कृपया भारत का राज्य या केंद्र शासित प्रदेश बताएं जहां आप रहते हैं।",
	},
}

// greetingWords force the greeting path regardless of state when matched
// case-insensitively against the whole message.
var greetingWords = map[string]struct{}{
	"hello": {}, "hi": {}, "hey": {}, "नमस्ते": {}, "हैलो": {}, "हाय": {},
}

// restartKeywords per language trigger a conversation reset from the
// completed state when contained in the message.
var restartKeywords = map[string][]string{
	LanguageEnglish: {"restart", "start over", "reset", "new", "another"},
	LanguageHindi:   {"शुरू", "फिर से", "रीसेट", "नया", "दोबारा", "पुनः", "restart"},
}

// Message returns the template for key in the given language, falling back
// to English for unsupported codes.
func Message(language string, key MessageKey) string {
	msgs, ok := templates[language]
	if !ok {
		msgs = templates[LanguageEnglish]
	}
	if msg, ok := msgs[key]; ok {
		return msg
	}
	return fmt.Sprintf("[%s]", key)
}

// FieldQuestion returns the fixed question asking for a field.
func FieldQuestion(language string, field models.Field) string {
	questions, ok := fieldQuestions[language]
	if !ok {
		questions = fieldQuestions[LanguageEnglish]
	}
	if q, ok := questions[field]; ok {
		return q
	}
	return Message(language, MsgError)
}

// FieldRetry returns the fixed retry message for a field.
func FieldRetry(language string, field models.Field) string {
	retries, ok := fieldRetries[language]
	if !ok {
		retries = fieldRetries[LanguageEnglish]
	}
	if msg, ok := retries[field]; ok {
		return msg
	}
	return Message(language, MsgError)
}

// RecommendationSummary renders the localized count summary for a set of
// matches. Counts above five get the "showing top 5" phrasing; Hindi uses
// singular/plural forms below that.
func RecommendationSummary(language string, count int) string {
	if language == LanguageHindi {
		result := fmt.Sprintf("आपकी जानकारी के आधार पर, मुझे %d सरकारी योजनाएँ मिली हैं जिनके लिए आप पात्र हो सकते हैं। ", count)
		if count > 5 {
			result += "मैं नीचे शीर्ष 5 मैचों को दिखा रहा हूँ, बाकी को देखने के विकल्प के साथ।"
		} else if count > 1 {
			result += "आप सभी को नीचे देख सकते हैं।"
		} else {
			result += "आप इसे नीचे देख सकते हैं।"
		}
		result += "\n\nप्रत्येक कार्यक्रम के विवरण के लिए 'अनुशंसित योजनाएँ' अनुभाग देखें।"
		return result
	}

	result := fmt.Sprintf("Based on your information, I've found %d government schemes you might be eligible for. ", count)
	if count > 5 {
		result += "I'm showing the top 5 matches below, with options to see the rest."
	} else if count > 1 {
		result += "You can see all of them below."
	} else {
		result += "You can see it below."
	}
	result += "\n\nCheck the 'Recommended Schemes' section for details on each program."
	return result
}

// IsGreetingWord reports whether the whole message is one of the fixed
// greeting words (English or Hindi script).
func IsGreetingWord(message string) bool {
	_, ok := greetingWords[normalizeWord(message)]
	return ok
}

// IsRestartRequest reports whether the message contains a restart keyword
// for the given language.
func IsRestartRequest(language, message string) bool {
	keywords, ok := restartKeywords[language]
	if !ok {
		keywords = restartKeywords[LanguageEnglish]
	}
	lower := normalizeWord(message)
	for _, keyword := range keywords {
		if containsFold(lower, keyword) {
			return true
		}
	}
	return false
}
