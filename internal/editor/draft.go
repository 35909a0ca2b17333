package editor

import (
	"time"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// BuildDraft строит черновик новой версии записи: глубокая копия оригинала,
// поверх которой записываются данные формы как есть, без нормализации.
// Оригинал не изменяется. Время последнего доступа и изменения
// устанавливается в now, иконка выбирается по resolveIcon.
//
// Дополнительные поля заменяются целиком набором из формы (не слиянием):
// поля, удаленные на форме, не сохраняются, добавленные - идут в порядке
// ввода. Если запись не поддерживает дополнительные поля, ее состояние
// остается нетронутым.
func BuildDraft(
	original entry.Record,
	f Form,
	pickedIcon *entry.Icon,
	isNew bool,
	defaultIcon entry.Icon,
	now time.Time,
) entry.Record {
	draft := original.Clone()

	draft.Times.LastAccess = now
	draft.Times.LastModification = now

	draft.Title = f.Title
	draft.UserName = f.UserName
	draft.URL = f.URL
	draft.Password = f.Password
	draft.Notes = f.Notes

	draft.Icon = resolveIcon(original, pickedIcon, isNew, defaultIcon)

	if draft.SupportsCustomFields {
		draft.CustomFields = nil
		if len(f.CustomFields) > 0 {
			draft.CustomFields = make([]entry.CustomField, len(f.CustomFields))
			copy(draft.CustomFields, f.CustomFields)
		}
	}

	return draft
}

// resolveIcon выбирает иконку черновика. Правила, в порядке приоритета:
// явно выбранная в течение сессии, иконка "ключ" по умолчанию для новой
// записи, иначе прежняя иконка записи.
func resolveIcon(original entry.Record, picked *entry.Icon, isNew bool, defaultIcon entry.Icon) entry.Icon {
	if picked != nil {
		return *picked
	}
	if isNew {
		return defaultIcon
	}
	return original.Icon
}
