package vault

import (
	"time"

	"github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// Стандартные ключи полей KDBX. Все остальные Values записи
// считаются дополнительными полями.
const (
	fieldNameTitle    = "Title"
	fieldNameUserName = "UserName"
	fieldNamePassword = "Password"
	fieldNameURL      = "URL"
	fieldNameNotes    = "Notes"
)

// isStandardKey сообщает, относится ли ключ к стандартным полям записи.
func isStandardKey(key string) bool {
	switch key {
	case fieldNameTitle, fieldNameUserName, fieldNamePassword, fieldNameURL, fieldNameNotes:
		return true
	default:
		return false
	}
}

// toEntry собирает запись KDBX из снимка Record. Порядок Values фиксирован:
// сначала стандартные поля, затем дополнительные в порядке отображения.
// Пароль и защищенные дополнительные поля помечаются Protected, чтобы
// gokeepasslib держал их значения зашифрованными в памяти.
func toEntry(rec entry.Record) gokeepasslib.Entry {
	e := gokeepasslib.NewEntry()
	e.UUID = rec.ID
	e.IconID = rec.Icon.ID
	e.CustomIconUUID = rec.Icon.Custom

	e.Values = []gokeepasslib.ValueData{
		{Key: fieldNameTitle, Value: gokeepasslib.V{Content: rec.Title}},
		{Key: fieldNameUserName, Value: gokeepasslib.V{Content: rec.UserName}},
		{Key: fieldNameURL, Value: gokeepasslib.V{Content: rec.URL}},
		{Key: fieldNamePassword, Value: gokeepasslib.V{
			Content:   rec.Password,
			Protected: wrappers.NewBoolWrapper(true),
		}},
		{Key: fieldNameNotes, Value: gokeepasslib.V{Content: rec.Notes}},
	}
	for _, field := range rec.CustomFields {
		e.Values = append(e.Values, gokeepasslib.ValueData{
			Key: field.Label,
			Value: gokeepasslib.V{
				Content:   field.Value,
				Protected: wrappers.NewBoolWrapper(field.Protected),
			},
		})
	}

	e.Times.CreationTime = timeWrapper(rec.Times.Creation)
	e.Times.LastAccessTime = timeWrapper(rec.Times.LastAccess)
	e.Times.LastModificationTime = timeWrapper(rec.Times.LastModification)

	return e
}

// fromEntry строит снимок Record из записи KDBX. Дополнительные поля
// сохраняют порядок следования в файле.
func fromEntry(e gokeepasslib.Entry, parent entry.NodeID) entry.Record {
	rec := entry.Record{
		ID:     e.UUID,
		Parent: parent,
		Icon: entry.Icon{
			ID:     e.IconID,
			Custom: e.CustomIconUUID,
		},
		// Записи KDBX поддерживают дополнительные поля и историю версий.
		SupportsCustomFields: true,
	}

	for _, val := range e.Values {
		switch val.Key {
		case fieldNameTitle:
			rec.Title = val.Value.Content
		case fieldNameUserName:
			rec.UserName = val.Value.Content
		case fieldNamePassword:
			rec.Password = val.Value.Content
		case fieldNameURL:
			rec.URL = val.Value.Content
		case fieldNameNotes:
			rec.Notes = val.Value.Content
		default:
			rec.CustomFields = append(rec.CustomFields, entry.CustomField{
				Label:     val.Key,
				Value:     val.Value.Content,
				Protected: val.Value.Protected.Bool,
			})
		}
	}

	rec.Times = entry.Times{
		Creation:         wrappedTime(e.Times.CreationTime),
		LastAccess:       wrappedTime(e.Times.LastAccessTime),
		LastModification: wrappedTime(e.Times.LastModificationTime),
	}

	return rec
}

// timeWrapper оборачивает время для KDBX; нулевое время не записывается.
func timeWrapper(t time.Time) *wrappers.TimeWrapper {
	if t.IsZero() {
		return nil
	}
	return &wrappers.TimeWrapper{Time: t}
}

// wrappedTime разворачивает время KDBX, отсутствующее поле дает нулевое время.
func wrappedTime(w *wrappers.TimeWrapper) time.Time {
	if w == nil {
		return time.Time{}
	}
	return w.Time
}
