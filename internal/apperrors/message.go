package apperrors

import "errors"

const rephraseHint = "Попробуйте переформулировать вопрос более конкретно, например:\n" +
	"• Сколько всего видео есть в системе?\n" +
	"• Сколько видео набрало больше 100000 просмотров?\n" +
	"• На сколько просмотров в сумме выросли все видео 28 ноября 2025?"

// UserMessage turns any error from the resolution pipeline into the reply
// text for the user. A non-nil error never yields an empty string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	detail := err.Error()
	if errors.As(err, &e) && e.Msg != "" {
		detail = e.Msg
	}

	switch KindOf(err) {
	case ErrNoData:
		return "Данные не загружены. Пожалуйста, отправьте JSON файл."
	case ErrParse:
		return "Не удалось разобрать данные: " + detail + "\n\nУбедитесь, что файл содержит корректный JSON."
	case ErrValidation:
		return "Ошибка проверки: " + detail
	case ErrGeneration, ErrMalformedResponse:
		return "Не удалось сформировать запрос для вашего вопроса.\n\n" + rephraseHint
	case ErrExecution:
		return "Ошибка при выполнении запроса к базе данных.\n\nПопробуйте позже или обратитесь к администратору."
	default:
		return "Произошла ошибка при обработке вопроса.\n\nПопробуйте переформулировать вопрос или обратитесь к администратору."
	}
}
