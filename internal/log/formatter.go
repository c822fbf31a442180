package log

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// logPackage is skipped when looking for the calling frame.
var logPackage = reflect.TypeOf(formatter{}).PkgPath()

type formatter struct {
	pattern string
	time    string
}

func newFormatter(pattern, time string) *formatter {
	return &formatter{pattern: pattern, time: time}
}

// Format supports unified log output format that has %time, %level, %field, %msg, %caller, %func, %goroutine, %n.
func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	output := f.pattern
	output = strings.Replace(output, "%time", entry.Time.Format(f.time), 1)
	output = strings.Replace(output, "%level", strings.ToUpper(entry.Level.String()), 1)
	output = strings.Replace(output, "%field", buildFields(entry), 1)
	output = strings.Replace(output, "%msg", entry.Message, 1)
	if strings.Contains(output, "%caller") || strings.Contains(output, "%func") {
		frame, ok := callerFrame()
		output = strings.Replace(output, "%caller", getCaller(frame, ok), 1)
		output = strings.Replace(output, "%func", getFunc(frame, ok), 1)
	}
	output = strings.Replace(output, "%goroutine", getGoroutineID(), 1)
	output = strings.ReplaceAll(output, "%n", "\n")
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return []byte(output), nil
}

// callerFrame finds the first frame outside logrus and this package.
func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if !strings.HasPrefix(fn, "github.com/sirupsen/logrus") && !strings.HasPrefix(fn, logPackage+".") {
			return frame, true
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

// getCaller renders package/file:line.
func getCaller(frame runtime.Frame, ok bool) string {
	if !ok {
		return "unknown"
	}
	file := frame.File
	if slashIdx := strings.LastIndex(file, "/"); slashIdx != -1 && slashIdx+1 < len(file) {
		file = file[slashIdx+1:]
	}
	pkg := ""
	if fn := frame.Function; fn != "" {
		// Trim receiver and function to get the import path, then keep the last element
		path := fn
		if slash := strings.LastIndex(path, "/"); slash != -1 {
			path = path[slash+1:]
		}
		if dot := strings.Index(path, "."); dot != -1 {
			path = path[:dot]
		}
		pkg = path
	}
	return fmt.Sprintf("%s/%s:%d", pkg, file, frame.Line)
}

// getFunc keeps only the part after the last dot.
func getFunc(frame runtime.Frame, ok bool) string {
	if !ok {
		return "unknown"
	}
	funcName := frame.Function
	if dotIdx := strings.LastIndex(funcName, "."); dotIdx != -1 && dotIdx+1 < len(funcName) {
		return funcName[dotIdx+1:]
	}
	return funcName
}

func getGoroutineID() string {
	// The first line of a stack trace is "goroutine N [running]:"
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	stack := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	idField := strings.Fields(stack)
	if len(idField) > 0 {
		if _, err := strconv.Atoi(idField[0]); err == nil {
			return idField[0]
		}
	}
	return "unknown"
}

// buildFields renders entry data as key=value pairs in key order.
func buildFields(entry *logrus.Entry) string {
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		val := entry.Data[key]
		stringVal, ok := val.(string)
		if !ok {
			if err, isErr := val.(error); isErr {
				stringVal = err.Error()
			} else {
				stringVal = fmt.Sprint(val)
			}
		}
		fields = append(fields, key+"="+stringVal)
	}
	return strings.Join(fields, ",")
}
