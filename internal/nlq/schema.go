package nlq

// SchemaDescription documents the two tables for the model.
const SchemaDescription = `База данных содержит информацию о видео и их статистике.

ТАБЛИЦА videos:
- id (TEXT, PRIMARY KEY) - идентификатор видео в формате UUID
- creator_id (TEXT) - идентификатор креатора (создателя видео)
- video_created_at (TIMESTAMP) - дата и время публикации видео
- views_count (BIGINT) - итоговое количество просмотров
- likes_count (BIGINT) - итоговое количество лайков
- comments_count (BIGINT) - итоговое количество комментариев
- reports_count (BIGINT) - итоговое количество жалоб
- created_at (TIMESTAMP) - дата создания записи
- updated_at (TIMESTAMP) - дата обновления записи

ТАБЛИЦА video_snapshots:
- id (TEXT, PRIMARY KEY) - идентификатор снапшота
- video_id (TEXT, FOREIGN KEY -> videos.id) - ссылка на видео
- views_count (BIGINT) - количество просмотров на момент замера
- likes_count (BIGINT) - количество лайков на момент замера
- comments_count (BIGINT) - количество комментариев на момент замера
- reports_count (BIGINT) - количество жалоб на момент замера
- delta_views_count (BIGINT) - приращение просмотров с прошлого замера
- delta_likes_count (BIGINT) - приращение лайков с прошлого замера
- delta_comments_count (BIGINT) - приращение комментариев с прошлого замера
- delta_reports_count (BIGINT) - приращение жалоб с прошлого замера
- created_at (TIMESTAMP) - время замера (снапшот делается каждый час)
- updated_at (TIMESTAMP) - дата обновления записи

ВАЖНО:
- Для итоговой статистики используй таблицу videos
- Для динамики и прироста используй таблицу video_snapshots
- Для диапазонов дат используй BETWEEN или >= и <=`

// example is a worked question/SQL pair shown to the model. {year} in either
// field is replaced with the default year.
type example struct {
	Question string
	SQL      string
}

var examples = []example{
	{"Сколько всего видео есть в системе?", "SELECT COUNT(*) FROM videos;"},
	{"Сколько всего просмотров у всех видео?", "SELECT SUM(views_count) FROM videos;"},
	{"Сколько видео набрало больше 100000 просмотров за всё время?", "SELECT COUNT(*) FROM videos WHERE views_count > 100000;"},
	{"На сколько просмотров в сумме выросли все видео 28 ноября {year}?", "SELECT SUM(delta_views_count) FROM video_snapshots WHERE DATE(created_at) = DATE '{year}-11-28';"},
	{"Сколько разных видео получали новые просмотры 27 ноября {year}?", "SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE DATE(created_at) = DATE '{year}-11-27' AND delta_views_count > 0;"},
	{"Сколько видео у креатора с id creator123 вышло с 1 ноября {year} по 5 ноября {year} включительно?", "SELECT COUNT(*) FROM videos WHERE creator_id = 'creator123' AND DATE(video_created_at) BETWEEN DATE '{year}-11-01' AND DATE '{year}-11-05';"},
	{"Какая сумма всех лайков?", "SELECT SUM(likes_count) FROM videos;"},
	{"Сколько видео опубликовано 15 ноября?", "SELECT COUNT(*) FROM videos WHERE DATE(video_created_at) = DATE '{year}-11-15';"},
	{"Сколько уникальных креаторов есть в базе?", "SELECT COUNT(DISTINCT creator_id) FROM videos;"},
	{"Какое максимальное количество просмотров у видео?", "SELECT MAX(views_count) FROM videos;"},
	{"Сколько комментариев получили видео за весь период?", "SELECT SUM(comments_count) FROM videos;"},
	{"На сколько увеличились лайки всех видео 29 ноября {year}?", "SELECT SUM(delta_likes_count) FROM video_snapshots WHERE DATE(created_at) = DATE '{year}-11-29';"},
	{"Какое количество видео с просмотрами более 50000?", "SELECT COUNT(*) FROM videos WHERE views_count > 50000;"},
	{"Сколько видео опубликовано в ноябре {year}?", "SELECT COUNT(*) FROM videos WHERE DATE(video_created_at) >= DATE '{year}-11-01' AND DATE(video_created_at) <= DATE '{year}-11-30';"},
}
