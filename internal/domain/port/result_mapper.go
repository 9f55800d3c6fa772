package port

// ResultMapper переводит метку в название для отображения и код категории
type ResultMapper interface {
	Lookup(label string) (displayName, categoryCode string)
}
