package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup はlogrusの標準ロガーを設定する
// levelは debug / info / warn / error、formatは json / text
func Setup(level, format string) {
	if strings.ToLower(format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("⚠️ 不明なログレベル %q のため info を使用します", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
