// ABOUTME: Embedded key-value backend built on badger.
// ABOUTME: Uses type-prefixed keys (record:, file:, user:) and client-side filtering.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/models"
)

const (
	RecordPrefix = "record:"
	FilePrefix   = "file:"
	UserPrefix   = "user:"
)

// KV stores labtrack data in a badger database directory.
type KV struct {
	db  *badger.DB
	dir string
}

// OpenKV opens or creates a badger database in dir. Badger's internal
// logging is routed to logger; a nil logger silences it.
func OpenKV(dir string, logger *zap.Logger) (*KV, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create kv directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.Named("badger").Sugar()})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	return &KV{db: db, dir: dir}, nil
}

// Close closes the badger database.
func (k *KV) Close() error {
	if k.db != nil {
		return k.db.Close()
	}
	return nil
}

func recordKey(r *models.Record) string {
	return RecordPrefix + r.Username + ":" + r.ID.String()
}

func fileKey(f *models.UploadedFile) string {
	return FilePrefix + f.Username + ":" + f.ID.String()
}

func userKey(username string) string {
	return UserPrefix + username
}

// SaveMetrics appends one record per metric.
func (k *KV) SaveMetrics(username, category string, metrics []models.ExtractedMetric, sourceFile string) ([]*models.Record, error) {
	records := buildRecords(username, category, metrics, sourceFile)
	if err := k.AppendRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendRecords writes all records in one badger transaction.
func (k *KV) AppendRecords(records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}
	err := k.db.Update(func(txn *badger.Txn) error {
		for _, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}
			if err := txn.Set([]byte(recordKey(r)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append records: %w", err)
	}
	return nil
}

// QueryTrend returns (date, value) pairs ascending by date.
func (k *KV) QueryTrend(username string, name models.MetricName) ([]models.TrendPoint, error) {
	records, err := k.records(models.RecordFilter{Username: username, MetricName: name})
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	sortRecordsAscending(records)

	points := make([]models.TrendPoint, 0, len(records))
	for _, r := range records {
		points = append(points, models.TrendPoint{Date: r.Date, Value: r.Value})
	}
	return points, nil
}

// QueryLatest returns the newest value for a metric.
func (k *KV) QueryLatest(username string, name models.MetricName) (*models.TrendPoint, error) {
	points, err := k.QueryTrend(username, name)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no %s values for %s: %w", name, username, ErrNotFound)
	}
	p := points[len(points)-1]
	return &p, nil
}

// ListRecords returns records matching filter, newest first.
func (k *KV) ListRecords(filter models.RecordFilter, limit int) ([]*models.Record, error) {
	records, err := k.records(filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	sortRecordsAscending(records)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (k *KV) records(filter models.RecordFilter) ([]*models.Record, error) {
	prefix := RecordPrefix
	if filter.Username != "" {
		prefix += filter.Username + ":"
	}

	records := []*models.Record{}
	err := k.scan(prefix, func(data []byte) error {
		var r models.Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil // skip invalid entries
		}
		if filter.Match(&r) {
			records = append(records, &r)
		}
		return nil
	})
	return records, err
}

// sortRecordsAscending orders by date, then by creation time.
func sortRecordsAscending(records []*models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// AddFile records metadata for an uploaded file.
func (k *KV) AddFile(f *models.UploadedFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal file: %w", err)
	}
	if err := k.set(fileKey(f), data); err != nil {
		return fmt.Errorf("add file: %w", err)
	}
	return nil
}

// GetFile retrieves one of username's files by ID or ID prefix.
func (k *KV) GetFile(username, idOrPrefix string) (*models.UploadedFile, error) {
	var matches []*models.UploadedFile
	prefix := FilePrefix + username + ":" + strings.ToLower(idOrPrefix)

	err := k.scan(prefix, func(data []byte) error {
		var f models.UploadedFile
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("unmarshal file: %w", err)
		}
		matches = append(matches, &f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("file %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("file %s: %w", idOrPrefix, ErrAmbiguousID)
	}
}

// ListFiles returns username's files matching filter, newest first.
func (k *KV) ListFiles(username string, filter models.FileFilter) ([]*models.UploadedFile, error) {
	files := []*models.UploadedFile{}
	err := k.scan(FilePrefix+username+":", func(data []byte) error {
		var f models.UploadedFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil // skip invalid entries
		}
		if filter.Match(&f) {
			files = append(files, &f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// CreateUser stores a new account, refusing taken usernames.
func (k *KV) CreateUser(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	key := []byte(userKey(u.Username))
	err = k.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return nil
}

// GetUser retrieves an account by username.
func (k *KV) GetUser(username string) (*models.User, error) {
	var data []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKey(username)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// ListUsers returns every account ordered by username.
func (k *KV) ListUsers() ([]*models.User, error) {
	users := []*models.User{}
	err := k.scan(UserPrefix, func(data []byte) error {
		var u models.User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil // skip invalid entries
		}
		users = append(users, &u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	// Keys iterate in byte order, which is username order.
	return users, nil
}

func (k *KV) set(key string, data []byte) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// scan calls fn with a copy of every value whose key has prefix.
func (k *KV) scan(prefix string, fn func(data []byte) error) error {
	p := []byte(prefix)
	return k.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(val); err != nil {
				return err
			}
		}
		return nil
	})
}

// badgerLogger adapts a zap sugared logger to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.s.Errorf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.s.Warnf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), args...)
}
