// Package nlq turns Russian analytics questions into a single aggregate SQL
// statement and model replies into integers.
package nlq

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/shared/ai"
)

// Generator asks a model for the SQL that answers a question.
type Generator struct {
	model       ai.Model
	defaultYear int
	dialect     string
	logger      *zap.Logger
}

// NewGenerator creates a generator for the given store dialect ("postgres",
// "mysql" or "sqlite"; empty means postgres).
func NewGenerator(model ai.Model, defaultYear int, dialect string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		model:       model,
		defaultYear: defaultYear,
		dialect:     dialect,
		logger:      logger,
	}
}

// Generate returns a single SELECT statement without a trailing semicolon.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	normalized := Normalize(question)
	g.logger.Info("generating SQL", zap.String("question", normalized))

	text, err := ai.Invoke(ctx, g.model, BuildPrompt(normalized, g.defaultYear, g.dialect))
	if err != nil {
		return "", err
	}
	g.logger.Debug("model reply", zap.String("text", apperrors.Truncate(text, 200)))

	sql, err := ExtractSQL(text)
	if err != nil {
		g.logger.Warn("no SQL in model reply", zap.String("text", apperrors.Truncate(text, 200)), zap.Error(err))
		return "", err
	}

	g.logger.Info("generated SQL", zap.String("sql", sql))
	return sql, nil
}

// dateLiteralRe matches a typed date literal such as DATE '2025-11-28'.
var dateLiteralRe = regexp.MustCompile(`DATE '(\d{4}-\d{2}-\d{2})'`)

// dateLiteral renders a calendar date the way the dialect compares it with
// DATE(column). SQLite has no typed literals; DATE() yields 'YYYY-MM-DD' text.
func dateLiteral(dialect, date string) string {
	if dialect == "sqlite" {
		return "'" + date + "'"
	}
	return "DATE '" + date + "'"
}

func dialectName(dialect string) string {
	switch dialect {
	case "mysql":
		return "MySQL"
	case "sqlite":
		return "SQLite"
	default:
		return "PostgreSQL"
	}
}

// adaptSQL rewrites the date literals of an example for the dialect.
func adaptSQL(sql, dialect string) string {
	if dialect != "sqlite" {
		return sql
	}
	return dateLiteralRe.ReplaceAllString(sql, "'$1'")
}

// dateRules lists how spoken dates map to SQL in the dialect.
func dateRules(year, dialect string) string {
	lit := func(monthDay string) string { return dateLiteral(dialect, year+"-"+monthDay) }
	rules := fmt.Sprintf(`- "28 ноября %[1]s" -> %[2]s
- "27 ноября" -> %[3]s (если год не указан, используй %[1]s)
- "с 1 по 5 ноября %[1]s включительно" -> BETWEEN %[4]s AND %[5]s
- "в ноябре %[1]s" -> >= %[4]s AND <= %[6]s
- Для извлечения даты из TIMESTAMP используй функцию DATE()`,
		year, lit("11-28"), lit("11-27"), lit("11-01"), lit("11-05"), lit("11-30"))
	if dialect == "sqlite" {
		rules += "\n- НЕ используй литералы вида DATE '...': сравнивай DATE(столбец) со строкой 'YYYY-MM-DD'"
	}
	return rules
}

// BuildPrompt assembles the instructions, schema, worked examples and the
// already normalized question for the store dialect.
func BuildPrompt(question string, defaultYear int, dialect string) string {
	year := strconv.Itoa(defaultYear)
	var b strings.Builder
	for _, ex := range examples {
		fmt.Fprintf(&b, "Вопрос: \"%s\"\nSQL: %s\n\n",
			strings.ReplaceAll(ex.Question, "{year}", year),
			adaptSQL(strings.ReplaceAll(ex.SQL, "{year}", year), dialect))
	}

	return fmt.Sprintf(`Ты - эксперт по SQL запросам для %[5]s. Твоя задача - преобразовать вопрос на русском языке в корректный SQL запрос.

%[1]s

КРИТИЧЕСКИ ВАЖНО:
1. Возвращай ТОЛЬКО SQL запрос, БЕЗ объяснений, комментариев или дополнительного текста
2. Используй ТОЛЬКО SELECT запросы (запрещены DROP, DELETE, UPDATE, INSERT, ALTER, CREATE, TRUNCATE, GRANT, REVOKE)
3. Запрос ДОЛЖЕН возвращать одно число (используй COUNT, SUM, MAX, MIN, AVG)
4. НЕ добавляй никакого текста до или после SQL запроса
5. НЕ используй markdown форматирование

ОБРАБОТКА ДАТ:
%[2]s

ПОНИМАНИЕ ВОПРОСОВ:
- "сколько" = COUNT
- "сумма", "всего" = SUM
- "прирост", "выросли", "увеличились" = delta_*_count из video_snapshots
- "больше", "превышает" = >
- "меньше" = <
- "разные", "уникальные" = DISTINCT
- "за всё время" = без фильтра по дате

ПРИМЕРЫ ВОПРОСОВ И SQL:

%[3]sЕсли вопрос неоднозначен, выбирай наиболее вероятную интерпретацию.

Вопрос пользователя: %[4]s

Верни ТОЛЬКО SQL запрос, без объяснений:`,
		SchemaDescription,
		dateRules(year, dialect),
		b.String(),
		question,
		dialectName(dialect),
	)
}
