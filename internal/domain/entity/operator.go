package entity

// OperatorState состояние оператора в диалоге с ботом
type OperatorState string

const (
	StateMainMenu      OperatorState = "main_menu"      // В главном меню
	StateAwaitingPhoto OperatorState = "awaiting_photo" // Ожидание фото для инспекции
	StateProcessing    OperatorState = "processing"     // Идёт инспекция
)

// Operator представляет оператора линии, работающего с ботом
type Operator struct {
	ID         int64         // Telegram User ID
	ChatID     int64         // Telegram Chat ID
	State      OperatorState // Текущее состояние
	LastResult *InspectionResult
}

// NewOperator создаёт оператора с начальным состоянием
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Remember сохраняет последний результат и возвращает оператора в меню
func (o *Operator) Remember(result *InspectionResult) {
	o.LastResult = result
	o.State = StateMainMenu
}
