package models

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
// Message заполняется только когда есть полезные детали (например, статус
// и тело ответа внешнего AI-сервиса).
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UploadResponse - ответ на успешную загрузку истории.
type UploadResponse struct {
	Message string        `json:"message"`
	Story   UploadedStory `json:"story"`
}

// TTSResponse - ответ на запрос синтеза речи: относительный путь к временному
// аудиофайлу под публичным корнем.
type TTSResponse struct {
	Audio string `json:"audio"`
}
