// Package parser разбирает легаси-формат плоских историй: необязательный блок
// строк "Key: value" сверху файла, затем пустая строка и свободный текст.
// Формат - соглашение, а не протокол: экранирования, кавычек и многострочных
// значений нет, разбор никогда не завершается ошибкой.
package parser

import "strings"

// Значения по умолчанию для полей, отсутствующих в заголовке.
const (
	DefaultTitle       = "Untitled Story"
	DefaultAuthor      = "Unknown Author"
	DefaultGenre       = "Uncategorized"
	DefaultCover       = "https://images.unsplash.com/photo-1519681393784-d120267933ba?w=800&q=80"
	DefaultDuration    = "5:00"
	DefaultDescription = "A captivating story awaits you."
)

// recognizedKeys - фиксированный набор ключей заголовка. Строка с другим
// ключом считается началом тела.
var recognizedKeys = map[string]struct{}{
	"title":       {},
	"author":      {},
	"genre":       {},
	"duration":    {},
	"cover":       {},
	"audio":       {},
	"description": {},
}

// Metadata - нормализованные метаданные истории: после применения
// значений по умолчанию пустым может остаться только Audio.
type Metadata struct {
	Title       string
	Author      string
	Genre       string
	Cover       string
	Audio       string
	Duration    string
	Description string
}

// Parse сканирует строки сверху вниз. Строка принадлежит заголовку, если
// часть до первого двоеточия (в нижнем регистре, без пробелов) - один из
// распознаваемых ключей. Сканирование прекращается на первой пустой строке
// или первой строке не по грамматике; всё дальнейшее - тело. Значение -
// всё после первого двоеточия, поэтому само значение может содержать
// двоеточия.
func Parse(content string) (map[string]string, string) {
	lines := strings.Split(content, "\n")
	meta := make(map[string]string)

	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++ // пустая строка-разделитель в тело не входит
			break
		}
		key, value, ok := splitHeaderLine(line)
		if !ok {
			break // строка не по грамматике: с неё начинается тело
		}
		if value != "" {
			meta[key] = value
		}
	}

	body := strings.TrimSpace(strings.Join(lines[i:], "\n"))
	return meta, body
}

// ParseStory разбирает содержимое плоского файла истории и применяет
// значения по умолчанию, чтобы ни одно поле не осталось пустым
// (кроме Audio, для которого пустая строка - легитимное значение).
func ParseStory(content string) (Metadata, string) {
	meta, body := Parse(content)
	return Metadata{
		Title:       orDefault(meta["title"], DefaultTitle),
		Author:      orDefault(meta["author"], DefaultAuthor),
		Genre:       orDefault(meta["genre"], DefaultGenre),
		Cover:       orDefault(meta["cover"], DefaultCover),
		Audio:       meta["audio"],
		Duration:    orDefault(meta["duration"], DefaultDuration),
		Description: orDefault(meta["description"], DefaultDescription),
	}, body
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	if _, known := recognizedKeys[key]; !known {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
