package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
)

// Identity - неизменяемый идентификатор сущности на поле.
//
// Identity является value-type: сравнивается по всем четырём полям,
// пригоден как ключ map и дёшево копируется.
//
// Поля:
//   - Camp - сторона (красные, синие, нейтралы)
//   - Role - тип сущности (пехота, аванпост, руна и т.д.)
//   - Serial - номер сущности внутри (Camp, Role)
//   - Order - порядковый номер экземпляра с тем же Serial (например, второй датчик)
//
// Один и тот же Identity никогда не выдаётся двум разным сущностям в рамках одного матча.
type Identity struct {
	Camp   enums.Camp
	Role   enums.Role
	Serial uint32
	Order  uint32
}

// NilIdentity - нулевой идентификатор.
//
// Используется как аналог nil: такой Identity никогда не регистрируется.
var NilIdentity = Identity{}

// Конфигурация битов упакованного ключа.
//
// Формат (от старших к младшим):
//
//	[ Camp (8) | Role (8) | Serial (24) | Order (24) ]
const (
	bitsOrder  = 24
	bitsSerial = 24
	bitsRole   = 8
	bitsCamp   = 8

	shiftSerial = bitsOrder
	shiftRole   = bitsOrder + bitsSerial
	shiftCamp   = bitsOrder + bitsSerial + bitsRole

	maskOrder  = (1 << bitsOrder) - 1
	maskSerial = (1 << bitsSerial) - 1
	maskRole   = (1 << bitsRole) - 1
	maskCamp   = (1 << bitsCamp) - 1
)

// NewIdentity собирает Identity из составных частей.
//
// Функция не выполняет проверок диапазонов. Serial и Order должны помещаться в 24 бита
// (см. Packable), Sim.Spawn отклоняет остальные.
func NewIdentity(camp enums.Camp, role enums.Role, serial, order uint32) Identity {
	return Identity{Camp: camp, Role: role, Serial: serial, Order: order}
}

// Packable - Serial и Order помещаются в упакованный ключ без потерь.
func (id Identity) Packable() bool {
	return id.Serial <= maskSerial && id.Order <= maskOrder
}

// Key упаковывает Identity в uint64 (журнал, компактные кадры репликации).
func (id Identity) Key() uint64 {
	return (uint64(id.Camp) << shiftCamp) |
		(uint64(id.Role) << shiftRole) |
		(uint64(id.Serial&maskSerial) << shiftSerial) |
		uint64(id.Order&maskOrder)
}

// IdentityFromKey - обратная операция к Key.
func IdentityFromKey(key uint64) Identity {
	return Identity{
		Camp:   enums.Camp((key >> shiftCamp) & maskCamp),
		Role:   enums.Role((key >> shiftRole) & maskRole),
		Serial: uint32((key >> shiftSerial) & maskSerial),
		Order:  uint32(key & maskOrder),
	}
}

// IsNil проверяет, является ли идентификатор нулевым.
func (id Identity) IsNil() bool {
	return id == NilIdentity
}

// WithOrder возвращает копию с другим Order (дочерние датчики, плиты брони).
func (id Identity) WithOrder(order uint32) Identity {
	id.Order = order
	return id
}

// String возвращает строковое представление вида RED/INFANTRY#3.0.
//
// Формат обратим через ParseIdentity и используется в логах, JSON и кадрах репликации.
func (id Identity) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s#%d.%d", id.Camp, id.Role, id.Serial, id.Order)
}

// ParseIdentity разбирает строку, созданную String().
func ParseIdentity(s string) (Identity, error) {
	if s == "" || s == "<nil>" {
		return NilIdentity, nil
	}

	slash := strings.IndexByte(s, '/')
	hash := strings.LastIndexByte(s, '#')
	if slash <= 0 || hash < slash {
		return NilIdentity, fmt.Errorf("invalid identity %q", s)
	}

	camp := enums.ParseCamp(s[:slash])
	if camp == enums.CampUnknown {
		return NilIdentity, fmt.Errorf("invalid identity %q: unknown camp", s)
	}
	role := enums.ParseRole(s[slash+1 : hash])
	if role == enums.RoleUnknown {
		return NilIdentity, fmt.Errorf("invalid identity %q: unknown role", s)
	}

	serialStr, orderStr, found := strings.Cut(s[hash+1:], ".")
	if !found {
		return NilIdentity, fmt.Errorf("invalid identity %q: missing order", s)
	}
	serial, err := strconv.ParseUint(serialStr, 10, bitsSerial)
	if err != nil {
		return NilIdentity, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	order, err := strconv.ParseUint(orderStr, 10, bitsOrder)
	if err != nil {
		return NilIdentity, fmt.Errorf("invalid identity %q: %w", s, err)
	}

	return NewIdentity(camp, role, uint32(serial), uint32(order)), nil
}

// MarshalText позволяет использовать Identity в JSON как строку и как ключ map.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText разбирает строковое представление.
func (id *Identity) UnmarshalText(data []byte) error {
	parsed, err := ParseIdentity(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
