package storage

import "time"

// Records are the relational shapes owned by this package. The rest of
// the system only ever sees domain views.

type UserRecord struct {
	ID           string `gorm:"primarykey;size:36"`
	Username     string `gorm:"size:36;uniqueIndex;not null"`
	DisplayName  string `gorm:"size:64;not null"`
	Avatar       string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

func (UserRecord) TableName() string { return "users" }

type RoomRecord struct {
	ID        string     `gorm:"primarykey;size:36"`
	Name      string     `gorm:"size:36;uniqueIndex;not null"`
	OwnerID   string     `gorm:"size:36;index;not null"`
	Owner     UserRecord `gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time
}

func (RoomRecord) TableName() string { return "rooms" }

// MessageRecord targets exactly one of ToUserID / ToRoomID.
type MessageRecord struct {
	ID         string      `gorm:"primarykey;size:36"`
	Content    string      `gorm:"size:2000;not null"`
	Timestamp  time.Time   `gorm:"index;not null"`
	FromUserID string      `gorm:"size:36;index;not null"`
	FromUser   UserRecord  `gorm:"foreignKey:FromUserID"`
	ToUserID   *string     `gorm:"size:36;index"`
	ToUser     *UserRecord `gorm:"foreignKey:ToUserID"`
	ToRoomID   *string     `gorm:"size:36;index"`
}

func (MessageRecord) TableName() string { return "messages" }

type UserRoomRecord struct {
	ID     uint   `gorm:"primarykey"`
	UserID string `gorm:"size:36;uniqueIndex:idx_user_room;not null"`
	RoomID string `gorm:"size:36;uniqueIndex:idx_user_room;not null"`
}

func (UserRoomRecord) TableName() string { return "user_rooms" }
