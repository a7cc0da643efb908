package engine

// Lifecycle - этап жизни сущности.
//
//	Uninitialized -> Identified -> Registered -> Active -> Destroyed
type Lifecycle uint8

const (
	StateUninitialized Lifecycle = iota
	StateIdentified
	StateRegistered
	StateActive
	StateDestroyed
)

var lifecycleToString = map[Lifecycle]string{
	StateUninitialized: "UNINITIALIZED",
	StateIdentified:    "IDENTIFIED",
	StateRegistered:    "REGISTERED",
	StateActive:        "ACTIVE",
	StateDestroyed:     "DESTROYED",
}

func (l Lifecycle) String() string {
	if val, ok := lifecycleToString[l]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsLive - сущность получает действия и тикает.
func (l Lifecycle) IsLive() bool {
	return l == StateRegistered || l == StateActive
}
