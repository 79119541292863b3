// pkg/utils/logger_test.go

package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	req := require.New(t)
	l := GetLogger("test")
	req.Same(l, GetLogger("test"))

	var buf bytes.Buffer
	l.SetOutput(&buf)
	defer l.SetOutput(os.Stderr)

	SetLogLevel(logrus.DebugLevel)
	l.Debugf("hello %s", "world")
	out := buf.String()
	req.Contains(out, "test[")
	req.Contains(out, "<DEBUG>")
	req.Contains(out, "hello world")

	buf.Reset()
	SetLogLevel(logrus.WarnLevel)
	l.Infof("dropped")
	req.True(strings.TrimSpace(buf.String()) == "")
	SetLogLevel(logrus.InfoLevel)
}
