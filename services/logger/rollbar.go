package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
)

// RollbarLogger prints to a standard logger and reports to Rollbar when enabled.
type RollbarLogger struct {
	std    *log.Logger
	client *rollbar.Client
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.NewSync(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "")
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(false)
	return &RollbarLogger{std: std, client: client}
}

// Enable turns Rollbar reporting on or off; it is off until enabled.
func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled && l.client.Token() != "")
}

// prepare sets the Rollbar person from the first identity.Identity in args and drops it.
// expected fmt: msg | error, map[string]interface{}, identity.Identity
func (l *RollbarLogger) prepare(args []interface{}) (map[string]interface{}, []interface{}, error) {
	var (
		err     error
		extras  map[string]interface{}
		usrSet  bool
		printed = make([]interface{}, 0, len(args))
	)
	for _, arg := range args {
		switch a := arg.(type) {
		case identity.Identity:
			if !usrSet && !a.IsZero() {
				l.client.SetPerson(a.ID, a.Name, a.Email)
				usrSet = true
			}
			continue
		case error:
			if err == nil {
				err = a
			}
		case map[string]interface{}:
			extras = a
		}
		printed = append(printed, arg)
	}
	if !usrSet {
		l.client.ClearPerson()
	}
	return extras, printed, err
}

func (l *RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	extras, printed, err := l.prepare(args)
	if err != nil {
		l.client.ErrorWithExtras(level, err, withMessage(extras, msg))
	} else {
		l.client.MessageWithExtras(level, msg, extras)
	}
	l.print(msg, printed)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.DEBUG, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.client.Close()
	l.std.Fatal(msg)
}

func withMessage(extras map[string]interface{}, msg string) map[string]interface{} {
	m := make(map[string]interface{}, len(extras)+1)
	for k, v := range extras {
		m[k] = v
	}
	m["message"] = msg
	return m
}
