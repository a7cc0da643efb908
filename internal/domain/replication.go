package domain

// FieldChange - одно изменение реплицируемого поля.
type FieldChange struct {
	Field string `json:"field" msgpack:"field"`
	Value any    `json:"value" msgpack:"value"`
}

// MatchEvent - заметное событие матча для архива (убийства, захваты, этапы).
type MatchEvent struct {
	Tick uint32     `json:"tick"`
	Name ActionName `json:"name"`
	Data Action     `json:"data"`
}

// Notable - действия, которые попадают в архив матча.
func Notable(name ActionName) bool {
	switch name {
	case NameStageStart, NameStageEnd, NameStageOutpostFall, NameStageBaseFall,
		NameCombatKill, NameOccupyOccupied, NameOccupyLeft, NameRuneActivated:
		return true
	}
	return false
}
