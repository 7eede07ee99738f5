package main

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gm-carstate/carstate"
)

// EventRecord is one emitted event of one cycle.
type EventRecord struct {
	ID          uint      `gorm:"primarykey"`
	Session     string    `gorm:"index;size:36"`
	Cycle       uint64    `gorm:"index"`
	Fingerprint string    `gorm:"size:64"`
	Event       string    `gorm:"size:32"`
	Button      string    `gorm:"size:16"`
	Pressed     bool
	Enable      bool // from the enable list rather than the event list
	VEgo        float64
	Gear        string `gorm:"size:16"`
	CreatedAt   time.Time
}

// Recorder stores events in a SQLite file.
type Recorder struct {
	db          *gorm.DB
	session     string
	fingerprint string
}

func OpenRecorder(path, session, fingerprint string) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open recorder %s: %w", path, err)
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		_ = closeDB(db)
		return nil, fmt.Errorf("migrate recorder: %w", err)
	}
	return &Recorder{db: db, session: session, fingerprint: fingerprint}, nil
}

// Record writes the events of one cycle. Cycles without events write nothing.
func (r *Recorder) Record(cycle uint64, out carstate.CarState, at time.Time) error {
	rows := make([]EventRecord, 0, len(out.Events)+len(out.EnableEvents))
	add := func(ev carstate.Event, enable bool) {
		row := EventRecord{
			Session:     r.session,
			Cycle:       cycle,
			Fingerprint: r.fingerprint,
			Event:       ev.Name.String(),
			Enable:      enable,
			VEgo:        out.VEgo,
			Gear:        out.Gear.String(),
			CreatedAt:   at,
		}
		if ev.Name == carstate.EventButton {
			row.Button = ev.Button.Type.String()
			row.Pressed = ev.Button.Pressed
		}
		rows = append(rows, row)
	}
	for _, ev := range out.Events {
		add(ev, false)
	}
	for _, ev := range out.EnableEvents {
		add(ev, true)
	}

	if len(rows) == 0 {
		return nil
	}
	if err := r.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("record cycle %d: %w", cycle, err)
	}
	return nil
}

// Events returns the rows of a session in emission order.
func (r *Recorder) Events(session string) ([]EventRecord, error) {
	var rows []EventRecord
	err := r.db.Where("session = ?", session).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return rows, nil
}

func (r *Recorder) Close() error {
	return closeDB(r.db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
