package editor

import (
	"log/slog"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// Store - интерфейс хранилища, необходимый сессии редактирования.
// Хранилище передается сессии явно при создании (без глобального
// "текущего хранилища"), поэтому в тестах легко подменяется.
type Store interface {
	// RecordByID возвращает снимок записи по идентификатору.
	RecordByID(id entry.NodeID) (entry.Record, bool)
	// GroupExists сообщает, существует ли группа с данным идентификатором.
	GroupExists(id entry.NodeID) bool
	// NewRecord выделяет новую запись: свежий идентификатор, время создания,
	// иконка по умолчанию. Запись становится авторитетной только после
	// успешного AddRecord.
	NewRecord() entry.Record
	// DefaultIcon возвращает иконку, назначаемую новым записям ("ключ").
	DefaultIcon() entry.Icon
	// AddRecord вставляет запись как нового потомка группы parent.
	// Возвращает финальную версию записи с примененными хранилищем полями.
	AddRecord(rec entry.Record, parent entry.NodeID, keepHistory bool) (entry.Record, error)
	// UpdateRecord заменяет содержимое original на draft, при включенном
	// keepHistory сохраняя прежнее состояние в истории записи.
	UpdateRecord(original, draft entry.Record, keepHistory bool) (entry.Record, error)
}

// actionResult - результат единицы работы сохранения.
// Доставляется сессии ровно один раз.
type actionResult struct {
	success bool
	record  entry.Record // Финальная запись (только при success)
	err     error        // Причина сбоя (только при !success)
}

// persistAction - асинхронная единица работы сохранения: вставка новой
// записи или обновление существующей. Запускается вне интерактивного
// потока и выполняется не более одного раза за сессию.
type persistAction interface {
	run(store Store) actionResult
}

// createAction вставляет черновик как новую запись в группу parent.
type createAction struct {
	draft       entry.Record
	parent      entry.NodeID
	keepHistory bool
}

func (a createAction) run(store Store) actionResult {
	rec, err := store.AddRecord(a.draft, a.parent, a.keepHistory)
	if err != nil {
		slog.Error("Ошибка добавления записи в хранилище", "error", err)
		return actionResult{err: err}
	}
	return actionResult{success: true, record: rec}
}

// updateAction заменяет содержимое существующей записи черновиком.
// Идентичность записи сохраняется: черновик занимает место оригинала.
type updateAction struct {
	original    entry.Record
	draft       entry.Record
	keepHistory bool
}

func (a updateAction) run(store Store) actionResult {
	rec, err := store.UpdateRecord(a.original, a.draft, a.keepHistory)
	if err != nil {
		slog.Error("Ошибка обновления записи в хранилище", "error", err)
		return actionResult{err: err}
	}
	return actionResult{success: true, record: rec}
}
