package entity

// State — состояние подсистемы AI-инспекции.
type State string

const (
	StateReady    State = "ready"
	StateDisabled State = "disabled"
)

// Status результат инициализации: Ready или Disabled с причиной.
type Status struct {
	State   State
	Backend Backend
	Reason  string
}

func Ready(backend Backend) Status {
	return Status{State: StateReady, Backend: backend}
}

func Disabled(reason error) Status {
	s := Status{State: StateDisabled}
	if reason != nil {
		s.Reason = reason.Error()
	}
	return s
}

// IsReady сообщает, можно ли запускать инспекцию.
func (s Status) IsReady() bool {
	return s.State == StateReady
}
