package models

// Story - каноническая запись истории. Каждая история хранится в отдельной
// директории (имя директории совпадает с ID) вместе с текстом, аудио и обложкой.
// После нормализации все поля - непустые строки, опциональных полей нет.
type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Duration    string `json:"duration"`
	Cover       string `json:"cover"`
	Audio       string `json:"audio"`
	Description string `json:"description"`
	Text        string `json:"text"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// StorySummary - элемент списка историй. Текст намеренно не включается,
// чтобы список оставался лёгким.
type StorySummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Duration    string `json:"duration"`
	Cover       string `json:"cover"`
	Audio       string `json:"audio"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// Summary возвращает версию записи без текста для списков.
func (s *Story) Summary() StorySummary {
	return StorySummary{
		ID:          s.ID,
		Title:       s.Title,
		Author:      s.Author,
		Genre:       s.Genre,
		Duration:    s.Duration,
		Cover:       s.Cover,
		Audio:       s.Audio,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

// UploadedStory - метаданные истории, загруженной пользователем через /api/upload.
// Хранится как <slug>.json в корне директории историй.
type UploadedStory struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	Genre       string `json:"genre"`
	Author      string `json:"author"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Audio       string `json:"audio"`
	Lullaby     string `json:"lullaby"`
	Cover       string `json:"cover"`
	Timestamp   string `json:"timestamp"`
}
