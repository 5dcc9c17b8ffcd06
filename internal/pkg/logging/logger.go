package logging

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level        zapcore.Level `json:"level" yaml:"level"`                   // 最低日志等级，DEBUG<INFO<WARN<ERROR<FATAL
	FileName     string        `json:"file_name" yaml:"file_name"`           // 日志文件位置，为空则只输出到控制台
	MaxSize      int           `json:"max_size" yaml:"max_size"`             // 切割前日志文件的最大大小，单位MB
	MaxAge       int           `json:"max_age" yaml:"max_age"`               // 旧日志文件保留的最大天数
	MaxBackups   int           `json:"max_backups" yaml:"max_backups"`       // 旧日志文件保留的最大个数
	IsStdout     bool          `json:"is_stdout" yaml:"is_stdout"`           // 是否输出到控制台
	IsStackTrace bool          `json:"is_stack_trace" yaml:"is_stack_trace"` // ERROR及以上等级是否输出堆栈信息
}

// InitLogger 初始化Logger并替换全局logger
func InitLogger(lCfg *LogConfig) error {
	if lCfg == nil {
		return errors.New("log config is nil")
	}

	writeSyncer, err := getLogWriter(lCfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(getEncoder(), writeSyncer, lCfg.Level)
	opts := []zap.Option{zap.AddCaller()}
	if lCfg.IsStackTrace {
		opts = append(opts, zap.AddStacktrace(zap.ErrorLevel))
	}
	zap.ReplaceGlobals(zap.New(core, opts...))
	return nil
}

// getEncoder 负责设置 encoding 的日志格式
func getEncoder() zapcore.Encoder {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encodeConfig.TimeKey = "time"
	encodeConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encodeConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(encodeConfig)
}

// getLogWriter 负责日志写入的位置
func getLogWriter(lCfg *LogConfig) (zapcore.WriteSyncer, error) {
	var syncers []zapcore.WriteSyncer
	if lCfg.FileName != "" {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   lCfg.FileName,
			MaxSize:    lCfg.MaxSize,
			MaxAge:     lCfg.MaxAge,
			MaxBackups: lCfg.MaxBackups,
			Compress:   true, // 压缩旧文件
		}))
	}
	if lCfg.IsStdout {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}

	if len(syncers) == 0 {
		return nil, errors.New("no log output: set file_name or is_stdout")
	}
	return zapcore.NewMultiWriteSyncer(syncers...), nil
}
