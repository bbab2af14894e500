package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	StatusBucket   = "monitor_status"
	DefaultTimeout = time.Second
)

// StatusDB stores monitor status records in a bbolt file.
//
// The file is opened for each operation and closed right after, so a
// running monitor never holds the lock a `status` invocation needs.
type StatusDB struct {
	path       string
	fileMode   os.FileMode
	timeout    time.Duration
	serializer Serializer
	mu         sync.Mutex
}

type Config struct {
	Path       string
	FileMode   os.FileMode
	Timeout    time.Duration
	Serializer Serializer
}

func NewStatusDB(cfg Config) (*StatusDB, error) {
	if cfg.Serializer == nil {
		cfg.Serializer = &GobSerializer{}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0666
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	sdb := &StatusDB{
		path:       cfg.Path,
		fileMode:   cfg.FileMode,
		timeout:    cfg.Timeout,
		serializer: cfg.Serializer,
	}

	// Создаем bucket при инициализации
	err := sdb.update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(StatusBucket)); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return sdb, nil
}

func (s *StatusDB) Path() string {
	return s.path
}

// SaveStatus сохраняет статус монитора, UpdatedAt is set to now.
func (s *StatusDB) SaveStatus(st *Status) error {
	if st == nil {
		return ErrNilStatus
	}
	if st.Root == "" {
		return ErrEmptyRoot
	}

	st.UpdatedAt = time.Now()
	data, err := s.serializer.Serialize(st)
	if err != nil {
		return err
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(StatusBucket))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(st.Root), data)
	})
}

// GetStatus загружает статус монитора по корневой директории
func (s *StatusDB) GetStatus(root string) (*Status, error) {
	var st Status

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(StatusBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		data := bucket.Get([]byte(root))
		if data == nil {
			return ErrStatusNotFound
		}

		return s.serializer.Deserialize(data, &st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetAllStatuses возвращает все сохраненные статусы
func (s *StatusDB) GetAllStatuses() ([]*Status, error) {
	var statuses []*Status

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(StatusBucket))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var st Status
			if err := s.serializer.Deserialize(v, &st); err != nil {
				return err
			}
			statuses = append(statuses, &st)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// DeleteStatus удаляет статус монитора
func (s *StatusDB) DeleteStatus(root string) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(StatusBucket))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(root))
	})
}

func (s *StatusDB) update(fn func(tx *bbolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bdb, err := bbolt.Open(s.path, s.fileMode, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return fmt.Errorf("failed to open status db: %w", err)
	}
	defer bdb.Close()

	return bdb.Update(fn)
}

func (s *StatusDB) view(fn func(tx *bbolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bdb, err := bbolt.Open(s.path, s.fileMode, &bbolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open status db: %w", err)
	}
	defer bdb.Close()

	return bdb.View(fn)
}
