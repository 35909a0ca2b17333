// Пакет editor реализует сессию редактирования записи: валидацию формы,
// построение черновика и асинхронное сохранение с однократной доставкой
// результата вызывающей стороне.
package editor

import (
	"github.com/maynagashev/passkeeper/internal/entry"
)

// Form - данные формы редактирования, как их ввел пользователь.
// Значения не нормализуются: пробелы в начале и конце сохраняются.
type Form struct {
	Title        string
	UserName     string
	URL          string
	Password     string
	Confirmation string // Подтверждение пароля, должно совпадать с Password
	Notes        string
	// Дополнительные поля в порядке отображения на форме.
	CustomFields []entry.CustomField
}

// Reason - код причины отклонения формы валидатором.
type Reason int

const (
	ReasonNone               Reason = iota // Форма принята
	ReasonTitleRequired                    // Пустой заголовок
	ReasonPasswordMismatch                 // Пароль и подтверждение не совпадают
	ReasonFieldLabelRequired               // Пустая метка дополнительного поля
)

// String возвращает текстовый код причины.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTitleRequired:
		return "title-required"
	case ReasonPasswordMismatch:
		return "password-mismatch"
	case ReasonFieldLabelRequired:
		return "field-label-required"
	default:
		return "unknown"
	}
}

// Verdict - результат валидации: либо форма принята, либо ровно одна
// причина отклонения (первое нарушенное правило).
type Verdict struct {
	OK     bool
	Reason Reason
	// Индекс первого дополнительного поля с пустой меткой
	// (только для ReasonFieldLabelRequired, иначе -1).
	FieldIndex int
}

// Validate проверяет форму в фиксированном порядке правил и останавливается
// на первом нарушении: заголовок, совпадение паролей, метки дополнительных
// полей. Проверка меток выполняется только если запись поддерживает
// дополнительные поля. Пустой пароль с пустым подтверждением допустим:
// записи без пароля - осознанная возможность, а не ошибка.
func Validate(f Form, allowExtraFields bool) Verdict {
	if len(f.Title) == 0 {
		return Verdict{Reason: ReasonTitleRequired, FieldIndex: -1}
	}

	if f.Password != f.Confirmation {
		return Verdict{Reason: ReasonPasswordMismatch, FieldIndex: -1}
	}

	if allowExtraFields {
		for i, field := range f.CustomFields {
			if len(field.Label) == 0 {
				return Verdict{Reason: ReasonFieldLabelRequired, FieldIndex: i}
			}
		}
	}

	return Verdict{OK: true, Reason: ReasonNone, FieldIndex: -1}
}
