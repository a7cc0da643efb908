package domain

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type actionDecoder func(data []byte) (Action, error)

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Таблица декодеров журнала. Новый вид действия добавляется сюда одной строкой.
var actionDecoders = map[ActionName]actionDecoder{
	NameStageStart:       decodeAs[StageStart],
	NameStageEnd:         decodeAs[StageEnd],
	NameStageOutpostFall: decodeAs[StageOutpostFall],
	NameStageBaseFall:    decodeAs[StageBaseFall],
	NameBuffGrant:        decodeAs[BuffGrant],
	NameBuffRevoke:       decodeAs[BuffRevoke],
	NameOccupyBegin:      decodeAs[OccupyBegin],
	NameOccupyEnd:        decodeAs[OccupyEnd],
	NameOccupyOccupied:   decodeAs[OccupyOccupied],
	NameOccupyLeft:       decodeAs[OccupyLeft],
	NameSupplyRequest:    decodeAs[SupplyRequest],
	NameSupplyDoSupply:   decodeAs[SupplyDoSupply],
	NameCombatFire:       decodeAs[CombatFire],
	NameCombatHit:        decodeAs[CombatHit],
	NameCombatKill:       decodeAs[CombatKill],
	NameRobotRevive:      decodeAs[RobotRevive],
	NameRobotMove:        decodeAs[RobotMove],
	NameRuneEnable:       decodeAs[RuneEnable],
	NameRuneStart:        decodeAs[RuneStart],
	NameRuneHit:          decodeAs[RuneHit],
	NameRuneActivated:    decodeAs[RuneActivated],
	NameLightSet:         decodeAs[LightSet],
}

// KnownAction проверяет, что имя входит в таксономию.
func KnownAction(name ActionName) bool {
	_, ok := actionDecoders[name]
	return ok
}

// EncodeAction сериализует полезную нагрузку действия в msgpack.
// Для ChildAction пишется только вложенное действие: адрес хранится в записи журнала отдельно.
func EncodeAction(a Action) ([]byte, error) {
	if child, ok := a.(ChildAction); ok {
		a = child.Inner
	}
	return msgpack.Marshal(a)
}

// DecodeAction восстанавливает действие по имени и msgpack-нагрузке.
func DecodeAction(name ActionName, data []byte) (Action, error) {
	dec, ok := actionDecoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	a, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return a, nil
}
