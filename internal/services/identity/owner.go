package identity

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/safezone/internal/models"
)

// ReservedOwnerEmail — адрес владельца сервиса. Эта учётная запись всегда
// получает права администратора и бессрочный VIP: при регистрации, при
// каждом входе и при старте процесса.
const ReservedOwnerEmail = "owner@safezone.app"

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsReservedOwner сообщает, принадлежит ли email владельцу сервиса.
func IsReservedOwner(email string) bool {
	return NormalizeEmail(email) == ReservedOwnerEmail
}

// IsVIPActive сообщает, действует ли VIP-статус пользователя в момент now.
// VIPExpiresAt == nil означает бессрочный VIP.
func IsVIPActive(u *models.User, now time.Time) bool {
	if u == nil || !u.IsVIP {
		return false
	}
	if u.VIPExpiresAt == nil {
		return true
	}
	return u.VIPExpiresAt.After(now)
}

// ownerAccess — права, которые всегда должны быть у владельца.
var ownerAccess = models.AccessUpdate{IsAdmin: true, IsVIP: true, VIPExpiresAt: nil}

func needsOwnerElevation(u *models.User) bool {
	return !u.IsAdmin || !u.IsVIP || u.VIPExpiresAt != nil
}

func applyAccess(u *models.User, upd models.AccessUpdate) {
	u.IsAdmin = upd.IsAdmin
	u.IsVIP = upd.IsVIP
	u.VIPExpiresAt = upd.VIPExpiresAt
}
