package model

// TagDefinition — определение мета-тега документа.
// Неизменяемо после получения от document-service.
type TagDefinition struct {
	// ID — идентификатор определения
	ID int `json:"id"`
	// Name — системный идентификатор (например, "department")
	Name string `json:"name"`
	// Label — отображаемое имя (например, "Department")
	Label string `json:"label"`
}

// Document — документ в том виде, в каком его вернул document-service.
type Document struct {
	ID         int           `json:"id"`
	Title      string        `json:"title"`
	Filename   string        `json:"filename"`
	UploadedAt Timestamp     `json:"uploaded_at"`
	Tags       []DocumentTag `json:"tags,omitempty"`
}

// DocumentTag — значение тега документа, порядок сохраняется как в ответе backend.
type DocumentTag struct {
	// TagDefinition может отсутствовать, если определение удалено
	TagDefinition *TagDefinition `json:"tag_definition,omitempty"`
	Value         string         `json:"value"`
}

// Label возвращает отображаемое имя тега или пустую строку.
func (t DocumentTag) Label() string {
	if t.TagDefinition == nil {
		return ""
	}
	return t.TagDefinition.Label
}
