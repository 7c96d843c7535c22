package logger

import (
	"os"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Error = errs.Class("logger")

type Config struct {
	Level       string `help:"日志打印级别,可选[debug|info|warn|error]" releaseDefault:"info" default:"debug"`
	Encoding    string `help:"日志格式,可选[console|json]" releaseDefault:"json" default:"console"`
	Development bool   `help:"开发模式,DPanic级别日志会直接panic" releaseDefault:"false" default:"true"`
	File        string `help:"日志文件,为空时输出到标准错误" default:""`
	MaxSize     int    `help:"单个日志文件的最大尺寸(MB)" default:"100"`
	MaxBackups  int    `help:"保留旧日志文件的最大数量" default:"7"`
	MaxAge      int    `help:"旧日志文件保留天数" default:"30"`
	Compress    bool   `help:"是否压缩旧日志文件" default:"false"`
}

// New 按配置创建日志, 设置了 File 时按大小滚动写入文件
func New(conf Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(conf.Level); err != nil {
			return nil, Error.Wrap(err)
		}
	}

	encoderConf := zap.NewProductionEncoderConfig()
	if conf.Development {
		encoderConf = zap.NewDevelopmentEncoderConfig()
	}
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch conf.Encoding {
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConf)
	default:
		return nil, Error.New("unknown encoding %q", conf.Encoding)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if conf.File != "" {
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAge,
			Compress:   conf.Compress,
			LocalTime:  true,
		})
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if conf.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewCore(encoder, out, level), opts...), nil
}
