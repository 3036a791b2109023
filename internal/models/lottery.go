package models

import "time"

// Prize levels. Level 1 is the highest rank.
const (
	LevelFirst  = 1
	LevelSecond = 2
	LevelThird  = 3
)

// User is a registered student or the administrator.
// StudentID is unique across the user collection and matched case-sensitively.
type User struct {
	ID        string `json:"id" db:"id"`
	StudentID string `json:"studentId" db:"student_id"`
	Name      string `json:"name" db:"name"`
	IsAdmin   bool   `json:"isAdmin" db:"is_admin"`
}

// Prize is a catalog entry with its remaining stock.
type Prize struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Level       int    `json:"level" db:"level"`
	Remaining   int    `json:"remaining" db:"remaining"`
}

// ValidLevel reports whether l is one of the three catalog levels.
func ValidLevel(l int) bool {
	return l >= LevelFirst && l <= LevelThird
}

// LotteryRecord is the immutable outcome of one participant's draw.
// The prize fields are nil when Won is false.
type LotteryRecord struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	StudentID  string    `json:"studentId" db:"student_id"`
	UserName   string    `json:"userName" db:"user_name"`
	PrizeID    *int      `json:"prizeId" db:"prize_id"`
	PrizeName  *string   `json:"prizeName" db:"prize_name"`
	PrizeLevel *int      `json:"prizeLevel" db:"prize_level"`
	Timestamp  time.Time `json:"timestamp" db:"drawn_at"`
	Won        bool      `json:"won" db:"won"`
}
