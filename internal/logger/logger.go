package logger

import (
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

var (
	AppLog   *logrus.Entry
	CfgLog   *logrus.Entry
	CodecLog *logrus.Entry
	SALog    *logrus.Entry
)

func init() {
	log = logrus.New()
	log.SetReportCaller(false)

	log.Formatter = &formatter.Formatter{
		TimestampFormat: time.RFC3339,
		TrimMessages:    true,
		NoFieldsSpace:   true,
		HideKeys:        true,
		FieldsOrder:     []string{"component", "category"},
	}

	AppLog = log.WithFields(logrus.Fields{"component": "IKESA", "category": "App"})
	CfgLog = log.WithFields(logrus.Fields{"component": "IKESA", "category": "CFG"})
	CodecLog = log.WithFields(logrus.Fields{"component": "IKESA", "category": "Codec"})
	SALog = log.WithFields(logrus.Fields{"component": "IKESA", "category": "SA"})
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

func SetReportCaller(enable bool) {
	log.SetReportCaller(enable)
}
