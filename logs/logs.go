package logs

import logging "github.com/ipfs/go-log/v2"

// SetAllLoggers sets the given level on every registered logger, then mutes
// the chattiest libp2p internals back to their useful levels.
func SetAllLoggers(level logging.LogLevel) {
	logging.SetAllLoggers(level)
	_ = logging.SetLogLevel("addrutil", "INFO")
	_ = logging.SetLogLevel("dht", "ERROR")
	_ = logging.SetLogLevel("swarm2", "WARN")
	_ = logging.SetLogLevel("connmgr", "WARN")
	_ = logging.SetLogLevel("nat", "INFO")
	_ = logging.SetLogLevel("dht/RtRefreshManager", "FATAL")
}

// SetDebugLogging sets debug log level across the node. Mainly used in tests.
func SetDebugLogging() {
	SetAllLoggers(logging.LevelDebug)
}
