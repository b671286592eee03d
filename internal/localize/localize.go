// Package localize holds the user-facing string table for the bot.
package localize

// phrases maps a message key to its translations. "default" is English and is
// the fallback for any language code without an explicit entry.
var phrases = map[string]map[string]string{
	"transcription": {
		"default": "Transcription",
		"ru":      "Транскрипция",
	},
	"summary": {
		"default": "Summary",
		"ru":      "Саммари",
	},
	"short_summary": {
		"default": "Short summary",
		"ru":      "Укороченное саммари",
	},
	"protocol": {
		"default": "Protocol",
		"ru":      "Протокол",
	},
	"file_added_to_queue": {
		"default": "File added to queue",
		"ru":      "Файл добавлен в очередь",
	},
	"start_processing": {
		"default": "Processing started",
		"ru":      "Обработка начата",
	},
	"start_answer": {
		"default": "Send an audio or a voice message to get the summary",
		"ru":      "Отправьте аудиофайл или голосовое сообщение для получения саммари",
	},
	"processing_completed": {
		"default": "Processing completed",
		"ru":      "Обработка завершена",
	},
	"transcription_result_hint": {
		"default": "Choose the result type below",
		"ru":      "Выберите вариант результата ниже",
	},
	"start_summarization": {
		"default": "Summarization started",
		"ru":      "Саммаризация начата",
	},
	"processing_error": {
		"default": "An error occurred while processing the file",
		"ru":      "Произошла ошибка при обработке файла",
	},
	"unknown_content_type": {
		"default": "Unsupported content type",
		"ru":      "Неподдерживаемый тип содержимого",
	},
	"unknown_error": {
		"default": "Unknown error, try again later",
		"ru":      "Неизвестная ошибка, попробуйте позже",
	},
	"transcription_not_found": {
		"default": "The transcription for this message was not found",
		"ru":      "Транскрипция для этого сообщения не найдена",
	},
	"unknown_speaker": {
		"default": "SPEAKER",
		"ru":      "Участник",
	},
	"download": {
		"default": "Download",
		"ru":      "Скачать",
	},
	"show": {
		"default": "Show",
		"ru":      "Показать",
	},
	"back": {
		"default": "Back",
		"ru":      "Назад",
	},
}

// Get returns the phrase for key in the given language, falling back to the
// default translation. Unknown keys yield the empty string.
func Get(key, lang string) string {
	phrase, ok := phrases[key]
	if !ok {
		return ""
	}
	if s, ok := phrase[lang]; ok {
		return s
	}
	return phrase["default"]
}
