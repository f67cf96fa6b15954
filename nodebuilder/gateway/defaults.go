package gateway

const (
	defaultBindAddress = "localhost"
	defaultPort        = "9935"
)
