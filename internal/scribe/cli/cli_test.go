package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevel("error", true))
	assert.Equal(t, slog.LevelInfo, LogLevel("info", false))
	assert.Equal(t, slog.LevelError, LogLevel("ERROR", false))
	assert.Equal(t, slog.LevelWarn, LogLevel("loud", false))
	assert.Equal(t, slog.LevelWarn, LogLevel("", false))
}

func TestReadmePath(t *testing.T) {
	assert.Equal(t, "/repo/README.md", ReadmePath("/repo", "README.md"))
	assert.Equal(t, "/docs/README.md", ReadmePath("/repo", "/docs/README.md"))
	assert.Empty(t, ReadmePath("/repo", ""))
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, Report(&buf, nil))
	assert.Empty(t, buf.String())

	err := scribeerr.Configuration(errors.New("please set the OPENAI_API_KEY environment variable"), "add it to a .env file")
	assert.Equal(t, 1, Report(&buf, err))
	assert.Contains(t, buf.String(), "error: please set the OPENAI_API_KEY environment variable")
	assert.Contains(t, buf.String(), "add it to a .env file")
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := VersionCmd("autocommit")
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	assert.NoError(t, cmd.Execute())
	assert.Equal(t, "autocommit dev\n", buf.String())
}
