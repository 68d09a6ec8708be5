package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyTime: "ts", logrus.FieldKeyMsg: "action"},
	})
	return l
}

// Base is the process logger used by components that have no request.
func Base() *logrus.Logger { return base }

// SetOutput redirects every log line (tests capture through this).
func SetOutput(w io.Writer) { base.SetOutput(w) }

// Setup applies the configured level and optional file sink. A file that
// cannot be opened is reported and stdout is kept.
func Setup(level, file string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		base.SetLevel(lvl)
	} else {
		base.Warnf("unknown log level %q, keeping %s", level, base.GetLevel())
	}
	if file == "" {
		return
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		base.Warnf("could not open log file %s: %v", file, err)
		return
	}
	base.SetOutput(io.MultiWriter(os.Stdout, f))
}

func write(level logrus.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := logrus.NewEntry(base)
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			e = e.WithField("user_id", uid)
		}
	}
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	e.Log(level, action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, c, action, nil, fields)
}

// Audit records a state change made by a privileged caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	f := map[string]any{"audit": true}
	for k, v := range fields {
		f[k] = v
	}
	write(logrus.InfoLevel, c, action, nil, f)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.WarnLevel, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.ErrorLevel, c, action, err, fields)
}
