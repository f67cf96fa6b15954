package rpc

const (
	defaultBindAddress = "localhost"
	defaultPort        = "9933"
)
