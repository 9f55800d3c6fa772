package entity

import "strings"

// Префикс меток, которые строятся из кодов ошибок препроцессинга.
const ErrorLabelPrefix = "ERR,"

// Коды ошибок, которые формирует сам сервис.
const (
	ErrCodeUndefined       = "ERR_UndefinedError"
	ErrCodeNoPositive      = "ERR_NoPositiveScore"
	ErrCodeLabelOutOfRange = "ERR_LabelOutOfRange"
)

// ErrorLabel строит синтетическую метку "ERR,<code>".
// Пустой код превращается в ERR_UndefinedError.
func ErrorLabel(code string) string {
	if code == "" {
		code = ErrCodeUndefined
	}
	return ErrorLabelPrefix + code
}

// IsErrorLabel сообщает, построена ли метка из кода ошибки.
func IsErrorLabel(label string) bool {
	return strings.HasPrefix(label, ErrorLabelPrefix)
}

// InspectionResult хранит итог AI-инспекции одного изображения.
type InspectionResult struct {
	ImagePath    string  // путь к проверенному изображению
	Label        string  // метка класса или "ERR,<code>"
	DisplayName  string  // название для отображения
	CategoryCode string  // код категории, "" если не задан
	Confidence   float32 // оценка выбранного класса
	Backend      Backend // CPU или GPU
}

// IsError сообщает, что результат построен из ошибки, а не из классификации.
func (r *InspectionResult) IsError() bool {
	return IsErrorLabel(r.Label)
}

// ConfidencePercent возвращает оценку в процентах.
func (r *InspectionResult) ConfidencePercent() float64 {
	return float64(r.Confidence) * 100.0
}
