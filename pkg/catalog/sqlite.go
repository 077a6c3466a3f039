/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is the sqlite row for a media item. List fields are stored as
// comma separated text.
type record struct {
	ID          string    `gorm:"primaryKey"`
	Kind        string    `gorm:"type:text;not null;index:idx_camera_start"`
	CameraID    string    `gorm:"type:text;index:idx_camera_start"`
	FolderID    string    `gorm:"type:text"`
	Title       string    `gorm:"type:text"`
	Path        string    `gorm:"type:text"`
	Start       time.Time `gorm:"column:start_time;not null;index:idx_camera_start;index"`
	End         time.Time `gorm:"column:end_time"`
	Size        int64
	HasClip     bool
	HasSnapshot bool
	Favorite    bool
	Reviewed    bool
	Severity    string `gorm:"type:text"`
	Tags        string `gorm:"type:text"`
	What        string `gorm:"column:what_labels;type:text"`
	Where       string `gorm:"column:where_zones;type:text"`
}

func (record) TableName() string {
	return "media_items"
}

func toRecord(i media.Item) record {
	return record{
		ID:          i.ID,
		Kind:        string(i.Kind),
		CameraID:    i.CameraID,
		FolderID:    i.FolderID,
		Title:       i.Title,
		Path:        i.Path,
		Start:       i.Start.UTC(),
		End:         i.End.UTC(),
		Size:        i.Size,
		HasClip:     i.HasClip,
		HasSnapshot: i.HasSnapshot,
		Favorite:    i.Favorite,
		Reviewed:    i.Reviewed,
		Severity:    i.Severity,
		Tags:        strings.Join(i.Tags, ","),
		What:        strings.Join(i.What, ","),
		Where:       strings.Join(i.Where, ","),
	}
}

func (r *record) item() media.Item {
	return media.Item{
		ID:          r.ID,
		Kind:        media.Kind(r.Kind),
		CameraID:    r.CameraID,
		FolderID:    r.FolderID,
		Title:       r.Title,
		Path:        r.Path,
		Start:       r.Start,
		End:         r.End,
		Size:        r.Size,
		HasClip:     r.HasClip,
		HasSnapshot: r.HasSnapshot,
		Favorite:    r.Favorite,
		Reviewed:    r.Reviewed,
		Severity:    r.Severity,
		Tags:        splitList(r.Tags),
		What:        splitList(r.What),
		Where:       splitList(r.Where),
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// SQLiteStore keeps the catalog in a sqlite database.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite catalog path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite catalog")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database instance")
	}
	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)

	if err = db.AutoMigrate(&record{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate sqlite catalog")
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, items ...media.Item) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]record, len(items))
	for i, item := range items {
		records[i] = toRecord(item)
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(records, 100).Error
	return errors.Wrap(err, "failed to insert media items")
}

func (s *SQLiteStore) Select(ctx context.Context, sel Selection) (media.Items, error) {
	tx := s.db.WithContext(ctx).Model(&record{})

	if len(sel.CameraIDs) > 0 {
		tx = tx.Where("camera_id IN ?", sel.CameraIDs)
	}
	if sel.Kind != "" {
		tx = tx.Where("kind = ?", string(sel.Kind))
	}
	if sel.Start != nil {
		tx = tx.Where("start_time >= ?", sel.Start.UTC())
	}
	if sel.End != nil {
		tx = tx.Where("start_time <= ?", sel.End.UTC())
	}

	var records []record
	if err := tx.Order("start_time ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to select media items")
	}

	items := make(media.Items, len(records))
	for i := range records {
		items[i] = records[i].item()
	}
	return items, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&record{}).Count(&count).Error
	return int(count), errors.Wrap(err, "failed to count media items")
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get database instance")
	}
	return sqlDB.Close()
}
