package server

import (
	"os"

	"github.com/goto/salt/log"
)

func NewLogger(level string) log.Logger {
	return log.NewLogrus(
		log.LogrusWithLevel(level),
		log.LogrusWithWriter(os.Stderr),
	)
}
