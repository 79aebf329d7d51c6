package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kochabx/eduportal/session"
)

// SessionValue 会话表中的一行，(session_id, name) 为主键
type SessionValue struct {
	SessionID string     `gorm:"primaryKey;size:64"`
	Name      string     `gorm:"primaryKey;size:32"`
	Value     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (SessionValue) TableName() string {
	return "session_values"
}

// Store 基于数据库表的会话存储
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore 创建会话存储并迁移表结构
func NewStore(ctx context.Context, db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	if err := db.WithContext(ctx).AutoMigrate(&SessionValue{}); err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Session 返回某个会话的存储后端
func (s *Store) Session(id string) (*Backend, error) {
	if id == "" {
		return nil, ErrEmptySession
	}
	return &Backend{store: s, id: id}, nil
}

// PurgeExpired 删除所有已过期的行，返回删除行数
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&SessionValue{})
	return res.RowsAffected, res.Error
}

// Backend 单个会话的数据库存储
// Save 在一个事务内 upsert，Delete 为单条语句
type Backend struct {
	store *Store
	id    string
}

var _ session.Backend = (*Backend)(nil)

// Load 读取若干 key，过期行视为不存在
func (b *Backend) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var rows []SessionValue
	err := b.store.db.WithContext(ctx).
		Where("session_id = ? AND name IN ? AND (expires_at IS NULL OR expires_at > ?)", b.id, keys, b.store.now().UTC()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}

// Save 写入若干条目，TTL <= 0 表示不过期
func (b *Backend) Save(ctx context.Context, entries ...session.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	now := b.store.now().UTC()
	rows := make([]SessionValue, len(entries))
	for i, e := range entries {
		rows[i] = SessionValue{SessionID: b.id, Name: e.Key, Value: e.Value, UpdatedAt: now}
		if e.TTL > 0 {
			exp := now.Add(e.TTL)
			rows[i].ExpiresAt = &exp
		}
	}

	return b.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Delete 删除若干 key
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.store.db.WithContext(ctx).
		Where("session_id = ? AND name IN ?", b.id, keys).
		Delete(&SessionValue{}).Error
}
