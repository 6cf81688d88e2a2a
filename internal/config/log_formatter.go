package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogFormatter prints "level=… ts=… key=value msg=…" lines with keys sorted.
type LogFormatter struct {
	NoColors bool
}

func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	const (
		red    = 31
		yellow = 33
		blue   = 36
		gray   = 37
	)
	levelColor := blue
	switch entry.Level {
	case log.DebugLevel, log.TraceLevel:
		levelColor = gray
	case log.WarnLevel:
		levelColor = yellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		levelColor = red
	}
	level := strings.ToUpper(entry.Level.String())[:4]
	if !f.NoColors {
		level = fmt.Sprintf("\x1b[%dm%s\x1b[0m", levelColor, level)
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("level=" + level)
	b.WriteString(" ts=" + entry.Time.Format("2006-01-02 15:04:05.000"))
	for _, k := range keys {
		val := entry.Data[k]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		m, err := json.Marshal(val)
		if err != nil || len(m) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf(" %s=%s", k, m))
	}
	b.WriteString(` msg="` + entry.Message + `"`)

	output := strings.ReplaceAll(b.String(), "\r", "\\r")
	output = strings.ReplaceAll(output, "\n", "\\n") + "\n"
	return []byte(output), nil
}
