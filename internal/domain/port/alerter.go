package port

// Alerter канал оповещения оператора
type Alerter interface {
	// Notify доставляет оповещение всегда
	Notify(title, message string)

	// NotifyOnce не повторяет оповещение, пока такое же ещё показано
	NotifyOnce(title, message string)
}
