// Пакет vault реализует хранилище записей поверх файла KDBX:
// открытие и создание базы, поиск записей и групп, вставку и обновление
// записей с ведением истории версий, сохранение на диск.
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tobischo/gokeepasslib/v3"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// Ошибки хранилища.
var (
	// ErrEntryNotFound - запись с данным идентификатором отсутствует в базе.
	ErrEntryNotFound = errors.New("запись не найдена в базе")
	// ErrGroupNotFound - группа с данным идентификатором отсутствует в базе.
	ErrGroupNotFound = errors.New("группа не найдена в базе")
)

// Store - хранилище записей поверх базы KDBX. Мутации и сохранение
// сериализуются мьютексом: единица сохранения выполняется в отдельной
// горутине, пока интерактивный поток продолжает читать.
type Store struct {
	mu   sync.Mutex
	db   *gokeepasslib.Database
	path string // Пустой путь - база только в памяти (еще не сохранялась)
}

// Open открывает и дешифрует файл KDBX по указанному пути и паролю.
func Open(path, password string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", path, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)

	if err = gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла '%s': %w", path, err)
	}

	// Разблокируем защищенные значения (пароли и т.д.)
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("ошибка разблокировки защищенных полей: %w", err)
	}

	slog.Info("База KDBX открыта", "path", path)
	return &Store{db: db, path: path}, nil
}

// Create создает новую базу KDBX (формат 4) с одной корневой группой.
// На диск база попадает при первом Save.
func Create(path, password, name string) (*Store, error) {
	if password == "" {
		return nil, errors.New("пароль не может быть пустым при создании базы")
	}

	rootGroup := gokeepasslib.NewGroup()
	rootGroup.Name = name

	db := gokeepasslib.NewDatabase(gokeepasslib.WithDatabaseKDBXVersion4())
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content.Meta.DatabaseName = name
	db.Content.Root = &gokeepasslib.RootData{
		Groups: []gokeepasslib.Group{rootGroup},
	}

	slog.Info("Создана новая база KDBX", "path", path, "name", name)
	return &Store{db: db, path: path}, nil
}

// Save кодирует и сохраняет базу в файл. База без пути (в памяти)
// сохраняется без записи на диск.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked выполняет сохранение; мьютекс уже должен быть взят.
func (s *Store) saveLocked() error {
	if s.db == nil {
		return errors.New("база данных не инициализирована (nil)")
	}
	if s.path == "" {
		return nil
	}

	// Важно: перед кодированием защищенные значения нужно заблокировать,
	// а после - разблокировать обратно для продолжения работы.
	if err := s.db.LockProtectedEntries(); err != nil {
		slog.Warn("Не удалось заблокировать поля перед сохранением", "error", err)
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла '%s' для записи: %w", s.path, err)
	}
	defer file.Close()

	if err = gokeepasslib.NewEncoder(file).Encode(s.db); err != nil {
		return fmt.Errorf("ошибка кодирования базы в файл '%s': %w", s.path, err)
	}

	if err = s.db.UnlockProtectedEntries(); err != nil {
		// Сохранение уже состоялось, поэтому ошибку не возвращаем.
		slog.Warn("Не удалось разблокировать поля после сохранения", "error", err)
	}

	slog.Info("База KDBX сохранена", "path", s.path)
	return nil
}

// Path возвращает путь к файлу базы (пустой для базы в памяти).
func (s *Store) Path() string { return s.path }

// Name возвращает имя базы из метаданных.
func (s *Store) Name() string {
	if s.db == nil || s.db.Content == nil || s.db.Content.Meta == nil {
		return ""
	}
	return s.db.Content.Meta.DatabaseName
}

// Records возвращает плоский список снимков всех записей базы
// в порядке обхода дерева групп.
func (s *Store) Records() []entry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []entry.Record
	if s.db == nil || s.db.Content == nil || s.db.Content.Root == nil {
		return records
	}
	collectRecords(&records, s.db.Content.Root.Groups)
	return records
}

// collectRecords - вспомогательная рекурсивная функция для сбора записей.
func collectRecords(records *[]entry.Record, groups []gokeepasslib.Group) {
	for i := range groups {
		group := &groups[i]
		for _, e := range group.Entries {
			*records = append(*records, fromEntry(e, group.UUID))
		}
		collectRecords(records, group.Groups)
	}
}

// RecordByID возвращает снимок записи по идентификатору.
func (s *Store) RecordByID(id entry.NodeID) (entry.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, parent := s.findEntry(id)
	if e == nil {
		return entry.Record{}, false
	}
	return fromEntry(*e, parent), true
}

// GroupExists сообщает, существует ли группа с данным идентификатором.
func (s *Store) GroupExists(id entry.NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findGroup(id) != nil
}

// RootGroupID возвращает идентификатор корневой группы базы.
func (s *Store) RootGroupID() entry.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil || s.db.Content == nil || s.db.Content.Root == nil ||
		len(s.db.Content.Root.Groups) == 0 {
		return entry.NodeID{}
	}
	return s.db.Content.Root.Groups[0].UUID
}

// NewRecord выделяет заготовку новой записи: свежий идентификатор,
// время создания и иконка по умолчанию. Авторитетной запись становится
// только после успешного AddRecord.
func (s *Store) NewRecord() entry.Record {
	now := time.Now()
	return entry.Record{
		ID:   gokeepasslib.NewUUID(),
		Icon: s.DefaultIcon(),
		Times: entry.Times{
			Creation:         now,
			LastAccess:       now,
			LastModification: now,
		},
		SupportsCustomFields: true,
	}
}

// DefaultIcon возвращает иконку новых записей - стандартный "ключ".
func (s *Store) DefaultIcon() entry.Icon {
	return entry.Icon{ID: entry.IconKey}
}

// AddRecord вставляет запись как нового потомка группы parent и сохраняет
// базу. Флаг keepHistory на пути создания не используется: истории у новой
// записи еще нет.
func (s *Store) AddRecord(rec entry.Record, parent entry.NodeID, _ bool) (entry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group := s.findGroup(parent)
	if group == nil {
		return entry.Record{}, fmt.Errorf("%w: %x", ErrGroupNotFound, parent)
	}

	group.Entries = append(group.Entries, toEntry(rec))
	if err := s.saveLocked(); err != nil {
		// Откатываем вставку: при сбое записи на диск база в памяти
		// должна остаться без изменений.
		group.Entries = group.Entries[:len(group.Entries)-1]
		return entry.Record{}, err
	}

	slog.Info("Добавлена новая запись", "id", rec.ID, "title", rec.Title)
	return fromEntry(group.Entries[len(group.Entries)-1], group.UUID), nil
}

// UpdateRecord заменяет содержимое записи original черновиком draft.
// При включенном keepHistory прежнее состояние добавляется в историю
// версий записи (если запись поддерживает историю).
func (s *Store) UpdateRecord(original, draft entry.Record, keepHistory bool) (entry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, parent := s.findEntry(original.ID)
	if existing == nil {
		return entry.Record{}, fmt.Errorf("%w: %x", ErrEntryNotFound, original.ID)
	}

	newEntry := toEntry(draft)
	newEntry.UUID = original.ID // Идентичность записи сохраняется
	newEntry.Histories = existing.Histories
	if keepHistory && original.SupportsCustomFields {
		snapshot := *existing
		snapshot.Histories = nil
		newEntry.Histories = append(newEntry.Histories,
			gokeepasslib.History{Entries: []gokeepasslib.Entry{snapshot}})
	}

	previous := *existing
	*existing = newEntry
	if err := s.saveLocked(); err != nil {
		// При сбое записи на диск возвращаем прежнее состояние.
		*existing = previous
		return entry.Record{}, err
	}

	slog.Info("Обновлена запись", "id", draft.ID, "title", draft.Title,
		"history", keepHistory)
	return fromEntry(*existing, parent), nil
}

// findEntry ищет запись по идентификатору и возвращает указатель на нее
// вместе с идентификатором группы-родителя.
func (s *Store) findEntry(id entry.NodeID) (*gokeepasslib.Entry, entry.NodeID) {
	if s.db == nil || s.db.Content == nil || s.db.Content.Root == nil {
		return nil, entry.NodeID{}
	}
	return findEntryInGroups(s.db.Content.Root.Groups, id)
}

// findEntryInGroups рекурсивно ищет запись по идентификатору.
func findEntryInGroups(groups []gokeepasslib.Group, id entry.NodeID) (*gokeepasslib.Entry, entry.NodeID) {
	for i := range groups {
		group := &groups[i]
		for j := range group.Entries {
			if group.Entries[j].UUID == id {
				return &group.Entries[j], group.UUID
			}
		}
		if e, parent := findEntryInGroups(group.Groups, id); e != nil {
			return e, parent
		}
	}
	return nil, entry.NodeID{}
}

// findGroup ищет группу по идентификатору.
func (s *Store) findGroup(id entry.NodeID) *gokeepasslib.Group {
	if s.db == nil || s.db.Content == nil || s.db.Content.Root == nil {
		return nil
	}
	return findGroupInGroups(s.db.Content.Root.Groups, id)
}

// findGroupInGroups рекурсивно ищет группу по идентификатору.
func findGroupInGroups(groups []gokeepasslib.Group, id entry.NodeID) *gokeepasslib.Group {
	for i := range groups {
		group := &groups[i]
		if group.UUID == id {
			return group
		}
		if found := findGroupInGroups(group.Groups, id); found != nil {
			return found
		}
	}
	return nil
}
