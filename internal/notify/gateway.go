package notify

// Канал broadcast общий для всех подписчиков; персональные каналы
// образуются от id пользователя.
const ChannelBroadcast = "neo:broadcast"

func UserChannel(userID string) string {
	return "neo:user:" + userID
}

const (
	EventBatchComplete = "batch-complete"
	EventNewHazardous  = "new-hazardous-object"
	EventCloseApproach = "close-approach-alert"
)

// Event - конверт сообщения шины: канал, имя события и произвольный payload.
type Event struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

// Gateway - fire-and-forget публикация. Доставка не подтверждается:
// если подписчиков нет, событие просто никто не увидит.
type Gateway interface {
	Publish(channel, event string, payload map[string]interface{})
	Close() error
}
