package elastic_search

import (
	"go.uber.org/zap"
)

type ElasticLogger struct {
}

func (l ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
