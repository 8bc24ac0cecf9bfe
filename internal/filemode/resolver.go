package filemode

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/models"
	"video-analytics/internal/nlq"
	"video-analytics/shared/ai"
)

var uuidInText = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// Answer is an integer answer. Determined is false when the model reply held
// no number and Value is the "0" fallback.
type Answer struct {
	Value      string
	Determined bool
}

// Resolver asks the model to answer a question from a loaded document.
type Resolver struct {
	model      ai.Model
	maxContext int
	sampleSize int
	logger     *zap.Logger
}

func NewResolver(model ai.Model, maxContext, sampleSize int, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		model:      model,
		maxContext: maxContext,
		sampleSize: sampleSize,
		logger:     logger,
	}
}

// Answer resolves question against doc. A nil doc fails with
// apperrors.ErrNoData.
func (r *Resolver) Answer(ctx context.Context, doc *models.Document, question string) (Answer, error) {
	if doc == nil {
		return Answer{}, apperrors.New(apperrors.ErrNoData, "no document loaded")
	}

	dataContext, err := BuildContext(doc, r.maxContext, r.sampleSize)
	if err != nil {
		return Answer{}, err
	}

	text, err := ai.Invoke(ctx, r.model, BuildPrompt(dataContext, question))
	if err != nil {
		return Answer{}, err
	}
	r.logger.Info("model answered",
		zap.String("question", apperrors.Truncate(question, 100)),
		zap.String("reply", apperrors.Truncate(text, 100)),
		zap.Int("reply_len", len(text)))

	value, determined := nlq.ExtractNumber(text)
	if value == "0" {
		r.logZero(doc, question, text, len(dataContext))
	}
	return Answer{Value: value, Determined: determined}, nil
}

// logZero records why a zero answer may be a false negative: whether the
// question named a video id and whether that id is in the document.
func (r *Resolver) logZero(doc *models.Document, question, reply string, contextLen int) {
	id := uuidInText.FindString(question)
	found := false
	if id != "" {
		_, found = doc.FindVideo(id)
	}
	r.logger.Warn("answer is 0",
		zap.String("question", apperrors.Truncate(question, 200)),
		zap.String("reply", apperrors.Truncate(reply, 200)),
		zap.Bool("has_uuid_in_question", id != ""),
		zap.String("uuid_in_question", id),
		zap.Bool("video_found_in_data", found),
		zap.Int("data_context_length", contextLen),
		zap.Int("videos_count", len(doc.Videos)))
}

// BuildPrompt assembles the answering rules, the data context and the
// question.
func BuildPrompt(dataContext, question string) string {
	return fmt.Sprintf(`%s

Данные:

%s

Вопрос пользователя: %s

Верни ТОЛЬКО число без текста, пробелов и символов форматирования.`, answerRules, dataContext, question)
}

const answerRules = `Ты - помощник для анализа данных о видео и их статистике.
Отвечай на вопросы пользователя на русском языке на основе предоставленных данных.

КРИТИЧЕСКИ ВАЖНО:
1. Возвращай ТОЛЬКО число без текста, пробелов и символов форматирования
2. Если вопрос требует подсчета, верни только результат вычисления
3. Используй ТОЧНЫЕ значения из данных
4. НЕ используй пробелы в числе (3326609, а не 3 326 609)
5. НЕ используй markdown и LaTeX
6. Если данных недостаточно для ответа, верни 0

ИДЕНТИФИКАТОРЫ ВИДЕО (UUID):
- Формат: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx, например ecd8a4e4-1f24-4b97-a944-35d17078ce7c
- Сравнивай UUID как строку, ТОЧНО, символ за символом, с учетом регистра
- НЕ меняй регистр, НЕ удаляй дефисы, НЕ преобразуй UUID
- Если в вопросе есть UUID, найди в массиве videos элемент, у которого поле "id" совпадает с ним
- Если видео с таким UUID нет, верни 0

ПОЛЯ (синонимы):
- "просмотры", "views", "статистика" (если не уточнено) = views_count
- "лайки", "likes" = likes_count
- "комментарии", "comments" = comments_count
- "жалобы", "репорты", "reports" = reports_count
- "прирост", "добавилось", "увеличились" = delta_*_count из snapshots

ДАТЫ:
- Из ISO 8601 бери только дату: "2025-11-15T10:00:00+00:00" -> "2025-11-15"
- "28 ноября 2025", "28.11.2025", "2025-11-28" = 2025-11-28
- Если год не указан, используй год из данных
- "с 1 по 5 ноября 2025", "1-5 ноября 2025" = с 2025-11-01 по 2025-11-05 включительно
- "в ноябре 2025", "за ноябрь 2025" = с 2025-11-01 по 2025-11-30
- Дата публикации видео: video_created_at; время замера: snapshots[].created_at

ПРИМЕРЫ:

Вопрос: "Сколько просмотров у видео с id ecd8a4e4-1f24-4b97-a944-35d17078ce7c?"
Ответ: 15000
(найди видео с этим id, верни views_count)

Вопрос: "Сколько лайков у видео ecd8a4e4-1f24-4b97-a944-35d17078ce7c?"
Ответ: 500

Вопрос: "Сколько всего просмотров у всех видео?"
Ответ: 3326609

Вопрос: "Сколько видео в файле?"
Ответ: 150

Вопрос: "Сколько видео опубликовано 15 ноября 2025?"
Ответ: 25
(посчитай видео, у которых video_created_at начинается с "2025-11-15")

Вопрос: "Сколько просмотров у видео, опубликованных в ноябре 2025?"
Ответ: 500000
(суммируй views_count видео с video_created_at от "2025-11-01" до "2025-11-30")

Вопрос: "Сколько просмотров добавилось 28 ноября 2025?"
Ответ: 5000
(суммируй delta_views_count снапшотов с created_at, начинающимся с "2025-11-28")

Вопрос: "Какая статистика по видео с id ecd8a4e4-1f24-4b97-a944-35d17078ce7c за 28 ноября?"
Ответ: 1500
(найди видео по id, затем его снапшоты за "2025-11-28")`
