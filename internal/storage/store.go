// Package storage is the persistence gateway: durable CRUD for users,
// rooms, memberships and messages behind domain-typed operations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Chat/internal/domain"
)

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection gets its own in-memory database, so
		// keep the pool at one.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&UserRecord{}, &RoomRecord{}, &MessageRecord{}, &UserRoomRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func userView(r *UserRecord) *domain.User {
	return &domain.User{
		ID:          r.ID,
		Username:    domain.Identity(r.Username),
		DisplayName: r.DisplayName,
		Avatar:      r.Avatar,
	}
}

func roomView(r *RoomRecord) *domain.Room {
	return &domain.Room{
		ID:    domain.RoomID(r.ID),
		Name:  domain.RoomName(r.Name),
		Owner: domain.Identity(r.Owner.Username),
	}
}

func (s *Store) findUserRecord(ctx context.Context, identity domain.Identity) (*UserRecord, error) {
	var rec UserRecord
	if err := s.db.WithContext(ctx).First(&rec, "username = ?", string(identity)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &rec, nil
}

// CreateUser persists a new account. The password hash is opaque here.
func (s *Store) CreateUser(ctx context.Context, identity domain.Identity, displayName, avatar, passwordHash string) (*domain.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserRecord{}).Where("username = ?", string(identity)).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, domain.ErrDuplicateUser
	}
	rec := UserRecord{
		ID:           uuid.NewString(),
		Username:     string(identity),
		DisplayName:  displayName,
		Avatar:       avatar,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return userView(&rec), nil
}

func (s *Store) FindUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	rec, err := s.findUserRecord(ctx, identity)
	if err != nil {
		return nil, err
	}
	return userView(rec), nil
}

// CredentialsOf returns the stored password hash for login checks.
func (s *Store) CredentialsOf(ctx context.Context, identity domain.Identity) (string, error) {
	rec, err := s.findUserRecord(ctx, identity)
	if err != nil {
		return "", err
	}
	return rec.PasswordHash, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var recs []UserRecord
	if err := s.db.WithContext(ctx).Order("username").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]*domain.User, 0, len(recs))
	for i := range recs {
		out = append(out, userView(&recs[i]))
	}
	return out, nil
}

// CreateRoom durably creates a room owned by the requester.
func (s *Store) CreateRoom(ctx context.Context, name domain.RoomName, owner domain.Identity) (*domain.Room, error) {
	if err := domain.ValidateRoomName(name); err != nil {
		return nil, err
	}
	ownerRec, err := s.findUserRecord(ctx, owner)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&RoomRecord{}).Where("name = ?", string(name)).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check room name: %w", err)
	}
	if count > 0 {
		return nil, domain.ErrDuplicateRoom
	}
	rec := RoomRecord{
		ID:        uuid.NewString(),
		Name:      string(name),
		OwnerID:   ownerRec.ID,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &domain.Room{ID: domain.RoomID(rec.ID), Name: name, Owner: owner}, nil
}

func (s *Store) FindRoom(ctx context.Context, name domain.RoomName) (*domain.Room, error) {
	var rec RoomRecord
	if err := s.db.WithContext(ctx).Preload("Owner").First(&rec, "name = ?", string(name)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return roomView(&rec), nil
}

func (s *Store) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	var recs []RoomRecord
	if err := s.db.WithContext(ctx).Preload("Owner").Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]*domain.Room, 0, len(recs))
	for i := range recs {
		out = append(out, roomView(&recs[i]))
	}
	return out, nil
}

// DeleteRoom removes a room and its dependents. Only the owner may
// delete; anyone else gets ErrForbidden.
func (s *Store) DeleteRoom(ctx context.Context, name domain.RoomName, requester domain.Identity) (*domain.Room, error) {
	var rec RoomRecord
	if err := s.db.WithContext(ctx).Preload("Owner").First(&rec, "name = ?", string(name)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	if rec.Owner.Username != string(requester) {
		return nil, domain.ErrForbidden
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("to_room_id = ?", rec.ID).Delete(&MessageRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", rec.ID).Delete(&UserRoomRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&RoomRecord{}, "id = ?", rec.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete room: %w", err)
	}
	return roomView(&rec), nil
}

// AppendRoomMessage persists a room message and returns its view.
func (s *Store) AppendRoomMessage(ctx context.Context, from domain.Identity, room domain.RoomName, content string) (*domain.MessageView, error) {
	sender, err := s.findUserRecord(ctx, from)
	if err != nil {
		return nil, err
	}
	var roomRec RoomRecord
	if err := s.db.WithContext(ctx).First(&roomRec, "name = ?", string(room)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	rec := MessageRecord{
		ID:         uuid.NewString(),
		Content:    content,
		Timestamp:  time.Now(),
		FromUserID: sender.ID,
		ToRoomID:   &roomRec.ID,
	}
	if err := s.db.WithContext(ctx).Omit("FromUser", "ToUser").Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &domain.MessageView{
		Content:   rec.Content,
		Timestamp: rec.Timestamp,
		From:      sender.DisplayName,
		Avatar:    sender.Avatar,
	}, nil
}

// AppendPrivateMessage persists a direct message between two users.
func (s *Store) AppendPrivateMessage(ctx context.Context, from, to domain.Identity, content string) (*domain.MessageView, error) {
	sender, err := s.findUserRecord(ctx, from)
	if err != nil {
		return nil, err
	}
	receiver, err := s.findUserRecord(ctx, to)
	if err != nil {
		return nil, err
	}
	rec := MessageRecord{
		ID:         uuid.NewString(),
		Content:    content,
		Timestamp:  time.Now(),
		FromUserID: sender.ID,
		ToUserID:   &receiver.ID,
	}
	if err := s.db.WithContext(ctx).Omit("FromUser", "ToUser").Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &domain.MessageView{
		Content:   rec.Content,
		Timestamp: rec.Timestamp,
		From:      sender.DisplayName,
		Avatar:    sender.Avatar,
		To:        receiver.DisplayName,
	}, nil
}

func messageViews(recs []MessageRecord) []*domain.MessageView {
	// Records arrive newest-first; reverse into chronological order.
	out := make([]*domain.MessageView, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		r := &recs[i]
		mv := &domain.MessageView{
			Content:   r.Content,
			Timestamp: r.Timestamp,
			From:      r.FromUser.DisplayName,
			Avatar:    r.FromUser.Avatar,
		}
		if r.ToUser != nil {
			mv.To = r.ToUser.DisplayName
		}
		out = append(out, mv)
	}
	return out
}

// RoomHistory returns the most recent limit messages of a room in
// chronological order. The query fetches newest-first and reverses so
// the cost stays bounded on long histories.
func (s *Store) RoomHistory(ctx context.Context, room domain.RoomName, limit int) ([]*domain.MessageView, error) {
	var roomRec RoomRecord
	if err := s.db.WithContext(ctx).First(&roomRec, "name = ?", string(room)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	var recs []MessageRecord
	err := s.db.WithContext(ctx).
		Preload("FromUser").
		Where("to_room_id = ?", roomRec.ID).
		Order("timestamp desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return messageViews(recs), nil
}

// PrivateHistory returns the most recent limit messages exchanged
// between two users, both directions, chronological order.
func (s *Store) PrivateHistory(ctx context.Context, a, b domain.Identity, limit int) ([]*domain.MessageView, error) {
	userA, err := s.findUserRecord(ctx, a)
	if err != nil {
		return nil, err
	}
	userB, err := s.findUserRecord(ctx, b)
	if err != nil {
		return nil, err
	}
	var recs []MessageRecord
	err = s.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA.ID, userB.ID, userB.ID, userA.ID).
		Order("timestamp desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return messageViews(recs), nil
}

// AddUserToRoom records a durable membership. Duplicates are ignored.
func (s *Store) AddUserToRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error {
	rec, err := s.findUserRecord(ctx, identity)
	if err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserRoomRecord{}).
		Where("user_id = ? AND room_id = ?", rec.ID, string(roomID)).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&UserRoomRecord{UserID: rec.ID, RoomID: string(roomID)}).Error; err != nil {
		return fmt.Errorf("failed to add user to room: %w", err)
	}
	return nil
}

// RoomsOfUser lists the rooms a user has a durable membership in.
func (s *Store) RoomsOfUser(ctx context.Context, identity domain.Identity) ([]*domain.Room, error) {
	rec, err := s.findUserRecord(ctx, identity)
	if err != nil {
		return nil, err
	}
	var rooms []RoomRecord
	err = s.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN user_rooms ON user_rooms.room_id = rooms.id").
		Where("user_rooms.user_id = ?", rec.ID).
		Order("rooms.name").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user rooms: %w", err)
	}
	out := make([]*domain.Room, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomView(&rooms[i]))
	}
	return out, nil
}

// MembersOfRoom lists the users with a durable membership in the room.
func (s *Store) MembersOfRoom(ctx context.Context, roomID domain.RoomID) ([]*domain.User, error) {
	var users []UserRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN user_rooms ON user_rooms.user_id = users.id").
		Where("user_rooms.room_id = ?", string(roomID)).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	out := make([]*domain.User, 0, len(users))
	for i := range users {
		out = append(out, userView(&users[i]))
	}
	return out, nil
}
