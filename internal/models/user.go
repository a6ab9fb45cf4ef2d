// Package models содержит доменные структуры SafeZone: пользователей,
// подписки, тревоги, уведомления соседям и обращения в поддержку.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DisplayTimeLayout — формат даты и времени в ответах панели администратора.
const DisplayTimeLayout = "02/01/2006 15:04"

// Address — адрес проживания пользователя. Соседями считаются жители
// с совпадающими State, City, Neighborhood и Street.
type Address struct {
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       string `json:"number"`
}

// SameStreet сообщает, находятся ли два адреса на одной улице.
func (a Address) SameStreet(b Address) bool {
	return a.State == b.State &&
		a.City == b.City &&
		a.Neighborhood == b.Neighborhood &&
		a.Street == b.Street
}

// String возвращает адрес в виде "улица, номер, район, город - штат".
func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s, %s - %s", a.Street, a.Number, a.Neighborhood, a.City, a.State)
}

// User представляет зарегистрированного жителя.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Address                  // адрес проживания
	ResidentNames []string   `json:"resident_names"`
	IsAdmin       bool       `json:"is_admin"`
	IsVIP         bool       `json:"is_vip"`
	VIPExpiresAt  *time.Time `json:"vip_expires_at,omitempty"` // nil — бессрочный VIP
	CreatedAt     time.Time  `json:"created_at"`
}

// DisplayName возвращает имя первого жителя, а если список пуст, имя учётной записи.
func (u *User) DisplayName() string {
	if len(u.ResidentNames) > 0 && u.ResidentNames[0] != "" {
		return u.ResidentNames[0]
	}
	return u.Name
}

// AccessUpdate описывает изменение флагов администратора и VIP.
type AccessUpdate struct {
	IsAdmin      bool
	IsVIP        bool
	VIPExpiresAt *time.Time
}

// UserSummary — строка списка пользователей в панели администратора.
type UserSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Neighborhood string    `json:"neighborhood"`
	IsAdmin      bool      `json:"is_admin"`
	IsVIP        bool      `json:"is_vip"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarshalJSON отдаёт created_at в формате DisplayTimeLayout.
func (u UserSummary) MarshalJSON() ([]byte, error) {
	type summary UserSummary
	return json.Marshal(struct {
		summary
		CreatedAt string `json:"created_at"`
	}{summary(u), u.CreatedAt.Format(DisplayTimeLayout)})
}
