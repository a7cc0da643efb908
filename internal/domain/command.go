package domain

import (
	"encoding/json"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
)

// InternalCommand - оптимизированная команда для движка.
// Использует CommandType вместо string.
type InternalCommand struct {
	Action  CommandType     // Число! Быстро и безопасно.
	Token   types.Identity  // Робот, от имени которого действует оператор (NilIdentity для судьи)
	Session string          // ID сессии наблюдателя (для ответа INIT)
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
