package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// detectMinConfidence gates detection: below this the narration is treated
// as English rather than risking a mismatched voice.
const detectMinConfidence = 0.6

// DetectISO2 guesses the language of narration text, returning an ISO 639-1
// code. Short or ambiguous text falls back to "en".
func DetectISO2(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "en"
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < detectMinConfidence {
		return "en"
	}
	if code := ToISO2(info.Lang.Iso6393()); code != "" {
		return code
	}
	return "en"
}

// voiceByLanguage maps ISO 639-1 codes to narration voices.
var voiceByLanguage = map[string]string{
	"en": "en-US-ChristopherNeural",
	"es": "es-ES-AlvaroNeural",
	"fr": "fr-FR-HenriNeural",
	"de": "de-DE-ConradNeural",
	"it": "it-IT-DiegoNeural",
	"pt": "pt-BR-AntonioNeural",
	"ja": "ja-JP-KeitaNeural",
	"ko": "ko-KR-InJoonNeural",
	"zh": "zh-CN-YunxiNeural",
	"ru": "ru-RU-DmitryNeural",
	"ar": "ar-SA-HamedNeural",
	"hi": "hi-IN-MadhurNeural",
	"nl": "nl-NL-MaartenNeural",
	"pl": "pl-PL-MarekNeural",
	"sv": "sv-SE-MattiasNeural",
	"da": "da-DK-JeppeNeural",
	"no": "nb-NO-FinnNeural",
	"fi": "fi-FI-HarriNeural",
}

// VoiceFor returns the narration voice for a language code, falling back to
// the English voice for unknown languages.
func VoiceFor(code string) string {
	if voice, ok := voiceByLanguage[ToISO2(code)]; ok {
		return voice
	}
	return voiceByLanguage["en"]
}
