package engine

import "errors"

var (
	// ErrMissingSensor - у сущности, которой нужен датчик, он не задан (ошибка конфигурации).
	ErrMissingSensor = errors.New("sensor is not configured")
	// ErrMissingChild - дочерний элемент (плита брони, ветвь руны) не найден.
	ErrMissingChild = errors.New("child element is not configured")

	ErrNilIdentity       = errors.New("identity is nil")
	ErrDuplicateIdentity = errors.New("identity is already registered")
	ErrIdentityMutation  = errors.New("identity cannot be changed after assignment")
	ErrNotIdentified     = errors.New("entity has no identity")
	ErrIdentityRange     = errors.New("identity serial or order does not fit the packed key")
	ErrAlreadySubscribed = errors.New("receiver is already subscribed")

	// ErrAuthorityViolation - попытка изменить авторитетное состояние вне сервера.
	ErrAuthorityViolation = errors.New("authoritative state modified by observer")
	// ErrDispatchDepth - слишком глубокая цепочка вложенных Send (цикл действий).
	ErrDispatchDepth = errors.New("dispatch depth exceeded")
)

var (
	// ErrAdminDisabled - судейская команда пришла, а консоль судьи выключена конфигурацией.
	ErrAdminDisabled = errors.New("admin commands are disabled")
	// ErrMatchNotFound - нет матча с таким ID.
	ErrMatchNotFound = errors.New("match not found")
	// ErrUnknownCommand - действие клиента не входит в протокол.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMatchClosed - цикл матча уже остановлен, команды не принимаются.
	ErrMatchClosed = errors.New("match is closed")
)
