package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"roomkeeper/internal/client/storage"
	"roomkeeper/internal/models"
)

var (
	// Ключи внутри buckets
	keyHistoryRecords = []byte("records")
	keyDeviceID       = []byte("device_id")
)

// SaveRooms persists the full room registry content.
// Содержимое bucket заменяется целиком: комнаты хранятся по ключу номера.
func (s *Storage) SaveRooms(ctx context.Context, rooms []*models.Room) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		// Пересоздаем bucket, чтобы удаленные комнаты не оставались
		if err := tx.DeleteBucket(bucketRooms); err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("failed to delete rooms bucket: %w", err)
		}
		bucket, err := tx.CreateBucket(bucketRooms)
		if err != nil {
			return fmt.Errorf("failed to create rooms bucket: %w", err)
		}

		for _, room := range rooms {
			data, err := json.Marshal(room)
			if err != nil {
				return fmt.Errorf("failed to marshal room %s: %w", room.Number, err)
			}
			if err := bucket.Put([]byte(room.Number), data); err != nil {
				return fmt.Errorf("failed to save room %s: %w", room.Number, err)
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("save rooms transaction failed: %w", err)
	}
	return nil
}

// LoadRooms restores the room registry content
func (s *Storage) LoadRooms(ctx context.Context) ([]*models.Room, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var rooms []*models.Room

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRooms)
		if bucket == nil {
			return storage.ErrStateNotFound
		}

		return bucket.ForEach(func(k, v []byte) error {
			var room models.Room
			if err := json.Unmarshal(v, &room); err != nil {
				return fmt.Errorf("failed to unmarshal room: %w", err)
			}
			rooms = append(rooms, &room)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// SaveHistory persists the history ledger records in insertion order.
// Журнал хранится одним JSON значением: порядок вставки и так значим,
// а размер ограничен максимумом журнала.
func (s *Storage) SaveHistory(ctx context.Context, records []models.HistoryRecord) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal history records: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketHistory)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		if err := bucket.Put(keyHistoryRecords, data); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("save history transaction failed: %w", err)
	}
	return nil
}

// LoadHistory restores the history ledger records in insertion order
func (s *Storage) LoadHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []models.HistoryRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketHistory)
		if bucket == nil {
			return storage.ErrStateNotFound
		}

		data := bucket.Get(keyHistoryRecords)
		if data == nil {
			return storage.ErrStateNotFound
		}

		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to unmarshal history: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return records, nil
}

// SaveBackups persists all stored backups, keyed by backup id
func (s *Storage) SaveBackups(ctx context.Context, backups []*models.Backup) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketBackups); err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("failed to delete backups bucket: %w", err)
		}
		bucket, err := tx.CreateBucket(bucketBackups)
		if err != nil {
			return fmt.Errorf("failed to create backups bucket: %w", err)
		}

		for _, b := range backups {
			data, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("failed to marshal backup %s: %w", b.ID, err)
			}
			if err := bucket.Put([]byte(b.ID), data); err != nil {
				return fmt.Errorf("failed to save backup %s: %w", b.ID, err)
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("save backups transaction failed: %w", err)
	}
	return nil
}

// LoadBackups restores all stored backups
func (s *Storage) LoadBackups(ctx context.Context) ([]*models.Backup, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var backups []*models.Backup

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBackups)
		if bucket == nil {
			return storage.ErrStateNotFound
		}

		return bucket.ForEach(func(k, v []byte) error {
			var b models.Backup
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("failed to unmarshal backup: %w", err)
			}
			backups = append(backups, &b)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}
	return backups, nil
}

// SaveDeviceID persists the stable device identity of this node
func (s *Storage) SaveDeviceID(ctx context.Context, deviceID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bucket.Put(keyDeviceID, []byte(deviceID))
	})

	if err != nil {
		return fmt.Errorf("save device id transaction failed: %w", err)
	}
	return nil
}

// LoadDeviceID restores the stable device identity
func (s *Storage) LoadDeviceID(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var deviceID string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return storage.ErrStateNotFound
		}

		data := bucket.Get(keyDeviceID)
		if data == nil {
			return storage.ErrStateNotFound
		}

		deviceID = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}
	return deviceID, nil
}
