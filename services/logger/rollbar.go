package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/user"
)

// RollbarLogger reports to Rollbar and mirrors everything to a standard
// logger. A user.User (or *user.User) anywhere in the args becomes the
// reported person of the occurrence; at most one is used.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.emit(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.emit(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.emit(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.emit(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.emit(rollbar.CRIT, msg, args)
	l.std.Fatal(msg)
}

func (l RollbarLogger) emit(level string, msg string, args []interface{}) {
	rollbar.Log(level, l.tagPerson(msg, args)...)

	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

// tagPerson sets the occurrence's person from the first user found in args
// and returns the remaining payload, msg first.
func (l RollbarLogger) tagPerson(msg string, args []interface{}) []interface{} {
	payload := make([]interface{}, 0, len(args)+1)
	payload = append(payload, msg)

	var person *user.User
	for _, arg := range args {
		switch usr := arg.(type) {
		case user.User:
			if person == nil {
				person = &usr
				continue
			}
		case *user.User:
			if person == nil && usr != nil {
				person = usr
				continue
			}
		}
		payload = append(payload, arg)
	}

	if person == nil {
		rollbar.ClearPerson()
		return payload
	}
	rollbar.SetPerson(person.ID, person.Username, person.Email)
	return append(payload, map[string]interface{}{"role": person.Role})
}
