package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Роли пользователей. Закрытый набор: все проверки доступа
// идут через эти константы, а не через сравнение произвольных строк.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User представляет пользователя в системе
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	FullName  string    `gorm:"size:200;not null;default:''" json:"full_name"`
	Phone     string    `gorm:"size:20;not null;default:''" json:"phone,omitempty"`
	Role      string    `gorm:"size:20;not null;default:'student'" json:"role"` // student, teacher, admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) == 0 || isBcryptHash(u.Password) {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword сравнивает пароль с хешем
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsAdmin возвращает true, если пользователь - администратор
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole проверяет, входит ли роль в закрытый набор
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// isBcryptHash распознает уже захешированный пароль по префиксу
func isBcryptHash(s string) bool {
	return len(s) == 60 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}
