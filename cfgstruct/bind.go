// Package cfgstruct 把带 help/default 标签的配置结构体绑定到命令行参数
//
//	type Config struct {
//	    Level string        `help:"日志级别" default:"info"`
//	    Dir   string        `help:"数据目录" default:"$CONFDIR/data"`
//	    Wait  time.Duration `help:"等待时间" default:"1s" releaseDefault:"5s"`
//	}
//
// 嵌套结构体以 "." 连接, 字段名转换为小写连字符形式, 例如 Log.MaxSize 对应 log.max-size.
package cfgstruct

import (
	"os"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/zeebo/errs"
)

var Error = errs.Class("cfgstruct")

type bindOpts struct {
	release bool
	vars    map[string]string
}

// BindOpt 绑定选项
type BindOpt func(o *bindOpts)

// UseReleaseDefaults 优先使用 releaseDefault 标签
func UseReleaseDefaults() BindOpt {
	return func(o *bindOpts) { o.release = true }
}

// UseDevDefaults 使用 default 标签, 这是默认行为
func UseDevDefaults() BindOpt {
	return func(o *bindOpts) { o.release = false }
}

// ConfDir 默认值中的 $CONFDIR 替换为 path
func ConfDir(path string) BindOpt {
	return Var("CONFDIR", path)
}

// Root 默认值中的 $ROOT 替换为 path
func Root(path string) BindOpt {
	return Var("ROOT", path)
}

// Var 默认值中的 $name 替换为 value, 未设置的变量从环境变量中读取
func Var(name, value string) BindOpt {
	return func(o *bindOpts) { o.vars[name] = value }
}

// Bind 为 config 的每个字段注册参数, config 必须是结构体指针
func Bind(flags *pflag.FlagSet, config interface{}, opts ...BindOpt) {
	o := bindOpts{vars: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}
	ptr := reflect.ValueOf(config)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		panic(Error.New("invalid config type: %T", config))
	}
	bindStruct(flags, "", ptr.Elem(), &o)
}

func bindStruct(flags *pflag.FlagSet, prefix string, val reflect.Value, o *bindOpts) {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("internal") == "true" {
			continue
		}
		fv := val.Field(i)
		name := prefix + Hyphenate(field.Name)

		if field.Type.Kind() == reflect.Struct {
			if field.Anonymous {
				bindStruct(flags, prefix, fv, o)
			} else {
				bindStruct(flags, name+".", fv, o)
			}
			continue
		}

		help := field.Tag.Get("help")
		def := o.expand(o.defaultOf(field.Tag))
		switch p := fv.Addr().Interface().(type) {
		case *string:
			flags.StringVar(p, name, def, help)
		case *bool:
			flags.BoolVar(p, name, cast.ToBool(def), help)
		case *int:
			flags.IntVar(p, name, cast.ToInt(def), help)
		case *int64:
			flags.Int64Var(p, name, cast.ToInt64(def), help)
		case *uint:
			flags.UintVar(p, name, cast.ToUint(def), help)
		case *float64:
			flags.Float64Var(p, name, cast.ToFloat64(def), help)
		case *time.Duration:
			flags.DurationVar(p, name, cast.ToDuration(def), help)
		case *[]string:
			var items []string
			if def != "" {
				items = strings.Split(def, ",")
			}
			flags.StringSliceVar(p, name, items, help)
		default:
			panic(Error.New("unsupported field type %s for %s", field.Type, name))
		}
	}
}

func (o *bindOpts) defaultOf(tag reflect.StructTag) string {
	if o.release {
		if def, ok := tag.Lookup("releaseDefault"); ok {
			return def
		}
	}
	return tag.Get("default")
}

func (o *bindOpts) expand(def string) string {
	if !strings.Contains(def, "$") {
		return def
	}
	return os.Expand(def, func(name string) string {
		if v, ok := o.vars[name]; ok {
			return v
		}
		return os.Getenv(name)
	})
}

// Hyphenate 把 Go 字段名转换为参数名, MaxIdleConn -> max-idle-conn, HTTPAddr -> http-addr
func Hyphenate(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
