package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opdss/vent/cfgstruct"
	"github.com/opdss/vent/event"
	"github.com/opdss/vent/internal/example"
	"github.com/opdss/vent/logger"
	"github.com/opdss/vent/process"
	"github.com/opdss/vent/server/http"
)

// Config vent 命令的全部配置
type Config struct {
	Log   logger.Config
	Event event.Config
	HTTP  http.Config
	Demo  struct {
		Users    int           `help:"每轮模拟的用户数量" default:"3"`
		Interval time.Duration `help:"serve 模式下的模拟间隔" default:"5s"`
	}
}

var (
	rootCmd = &cobra.Command{
		Use:   "vent",
		Short: "typed in-process event registry demo",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "run one round of the example publishers",
		RunE:  cmdRun,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "run the example publishers periodically and serve the debug endpoints",
		RunE:  cmdServe,
	}
	setupCmd = &cobra.Command{
		Use:         "setup",
		Short:       "write the default configuration file",
		RunE:        cmdSetup,
		Annotations: map[string]string{"type": "setup"},
	}

	conf    Config
	confDir string
)

func init() {
	defaultConfDir := ".vent"
	if dir, err := os.UserConfigDir(); err == nil {
		defaultConfDir = filepath.Join(dir, "vent")
	}
	rootCmd.PersistentFlags().StringVar(&confDir, "config-dir", defaultConfDir, "配置文件目录")
	rootCmd.AddCommand(runCmd, serveCmd, setupCmd)

	for _, cmd := range []*cobra.Command{runCmd, serveCmd, setupCmd} {
		process.Bind(cmd, &conf, cfgstruct.ConfDir(defaultConfDir))
	}
}

func main() {
	process.ExecWithOptions(rootCmd, process.ExecOptions{
		LoadConfig:    process.LoadConfig,
		LoggerFactory: newLogger,
	})
}

func newLogger(base *zap.Logger) *zap.Logger {
	log, err := logger.New(conf.Log)
	if err != nil {
		base.Error("invalid log configuration, using default logger", zap.Error(err))
		return base
	}
	return log
}

func cmdRun(cmd *cobra.Command, args []string) error {
	log := zap.L()
	defer event.ReplaceDefault(event.New(log.Named("event"), conf.Event))()

	watch := example.Watch(log)
	defer watch.Cancel()

	stats := example.Simulate(log, conf.Demo.Users)
	log.Info("simulation finished",
		zap.Int("logins", stats.Logins),
		zap.Int("renames", stats.Renames),
		zap.Int("unread", stats.Unread),
		zap.Int("logouts", stats.Logouts))
	return nil
}

func cmdServe(cmd *cobra.Command, args []string) error {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	registry := event.New(log.Named("event"), conf.Event)
	defer event.ReplaceDefault(registry)()

	watch := example.Watch(log)
	defer watch.Cancel()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	http.MountRegistry(engine, registry)
	srv := http.NewServer(engine, log.Named("http"), conf.HTTP)

	interval := conf.Demo.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.WithoutCancel(gctx))
	})
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats := example.Simulate(log, conf.Demo.Users)
				log.Debug("simulation round", zap.Any("stats", stats))
			}
		}
	})
	return g.Wait()
}

func cmdSetup(cmd *cobra.Command, args []string) error {
	outfile := filepath.Join(confDir, process.DefaultCfgFilename)
	if _, err := os.Stat(outfile); err == nil {
		return errs.New("configuration already exists: %s", outfile)
	}
	if err := process.SaveConfig(cmd, outfile, nil); err != nil {
		return err
	}
	zap.L().Info("configuration written", zap.String("Location", outfile))
	return nil
}
