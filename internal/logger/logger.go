package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定したwriterに書き出すJSON形式のslog.Loggerを返す。
func Setup(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetupDefault はJSON形式のロガーをslogのデフォルトに設定する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}
