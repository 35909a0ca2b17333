// Пакет entry содержит чистое представление записи (Credential Record),
// не зависящее от UI и формата хранения. Запись передается между
// валидатором, построителем черновика и хранилищем как снимок данных.
package entry

import (
	"time"

	"github.com/tobischo/gokeepasslib/v3"
)

// NodeID - идентификатор узла дерева (записи или группы) в хранилище.
// Используем UUID формата KDBX, он назначается при создании и далее неизменен.
type NodeID = gokeepasslib.UUID

// Icon описывает иконку записи: либо стандартная (по номеру),
// либо пользовательская (по UUID, если он ненулевой).
type Icon struct {
	ID     int64  // Номер стандартной иконки KeePass
	Custom NodeID // UUID пользовательской иконки (нулевой, если не задана)
}

// IconKey - стандартная иконка "ключ", назначается новым записям по умолчанию.
const IconKey int64 = 0

// CustomField - дополнительное поле записи.
// Уникальность меток на этом уровне не проверяется (дубликаты допустимы),
// пустая метка отклоняется только валидатором формы.
type CustomField struct {
	Label     string // Метка поля (обязательна при сохранении)
	Value     string // Значение поля
	Protected bool   // Хранить значение в защищенной памяти (как пароль)
}

// Times - временные отметки записи.
type Times struct {
	Creation         time.Time // Время создания
	LastAccess       time.Time // Время последнего доступа
	LastModification time.Time // Время последнего изменения
}

// Record - снимок одной записи хранилища.
type Record struct {
	ID       NodeID // Идентификатор записи, неизменен после создания
	Parent   NodeID // Группа-родитель (обязательна для сохранения новой записи)
	Title    string
	UserName string
	URL      string
	Password string // Чувствительное поле
	Notes    string // Чувствительное поле
	Icon     Icon
	Times    Times
	// Дополнительные поля в порядке отображения.
	CustomFields []CustomField
	// Поддерживает ли запись дополнительные поля и историю версий.
	// У структурных записей старых форматов - нет.
	SupportsCustomFields bool
}

// Clone возвращает глубокую копию записи: дополнительные поля копируются
// по значению и не разделяются с оригиналом.
func (r Record) Clone() Record {
	clone := r
	if r.CustomFields != nil {
		clone.CustomFields = make([]CustomField, len(r.CustomFields))
		copy(clone.CustomFields, r.CustomFields)
	}
	return clone
}

// HasCustomIcon сообщает, назначена ли записи пользовательская иконка.
func (i Icon) HasCustomIcon() bool {
	return i.Custom != NodeID{}
}
