package domain

import "encoding/json"

// InternalCommand - команда для движка. Использует ActionType вместо string.
type InternalCommand struct {
	Action  ActionType
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
