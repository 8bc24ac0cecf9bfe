package videoanalytics

import (
	"context"
	"fmt"
	"strings"

	"video-analytics/internal/apperrors"
)

// quickQuestions maps shortcut commands to the question they ask.
var quickQuestions = map[string]string{
	"/total_videos":   "Сколько всего видео есть в системе?",
	"/total_views":    "Какое общее количество просмотров всех видео?",
	"/total_likes":    "Сколько всего лайков у всех видео?",
	"/popular_videos": "Сколько видео набрало больше 100000 просмотров?",
}

const helpText = `Привет! Я бот для аналитики видео.

Режимы работы:
1. Анализ данных из базы данных - задавайте вопросы на русском языке
2. Анализ загруженного JSON файла - загрузите файл командой /load <путь>, затем задавайте вопросы

Быстрые команды:
• /total_videos - Сколько всего видео?
• /total_views - Общее количество просмотров
• /total_likes - Общее количество лайков
• /popular_videos - Популярные видео (>100k просмотров)
• /clear_file - Очистить загруженный файл

Примеры вопросов:
• Сколько всего видео есть в системе?
• Сколько видео набрало больше 100000 просмотров?
• На сколько просмотров выросли все видео 28 ноября 2025?
• Сколько разных видео получали новые просмотры 27 ноября 2025?`

// Handle processes one line of input: a command or a free-form question.
// It always returns the text to show the user.
func (a *Agent) Handle(ctx context.Context, line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if !strings.HasPrefix(line, "/") {
		return a.Reply(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	if q, ok := quickQuestions[cmd]; ok {
		return a.Reply(ctx, q)
	}

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/clear_file":
		if a.Clear() {
			return "Загруженный файл очищен. Теперь бот будет использовать данные из базы данных."
		}
		return "Нет загруженного файла для очистки."
	case "/load":
		if arg == "" {
			return "Укажите путь к JSON файлу: /load <путь>"
		}
		doc, err := a.LoadFile(ctx, arg)
		if err != nil {
			return apperrors.UserMessage(err)
		}
		return fmt.Sprintf("Файл '%s' успешно загружен (%d видео).\n\n"+
			"Теперь вы можете задавать вопросы на основе данных из этого файла.\n"+
			"Используйте /clear_file чтобы вернуться к анализу данных из базы.", doc.Name, len(doc.Videos))
	default:
		return fmt.Sprintf("Неизвестная команда %s. Используйте /start для справки.", cmd)
	}
}
