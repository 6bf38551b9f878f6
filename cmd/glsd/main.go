package main

import (
	"context"
	"errors"
	"fmt"
	clog "log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/egorka-gh/gls/gls"
	"github.com/egorka-gh/gls/journal"
	log "github.com/go-kit/kit/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/kardianos/osext"
	service1 "github.com/kardianos/service"
	group "github.com/oklog/oklog/pkg/group"

	"github.com/spf13/viper"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

//demon logger
var dLogger service1.Logger

type program struct {
	group     *group.Group
	rep       journal.Repository
	interrupt chan struct{}
	quit      chan struct{}
}

//start os demon or console using kardianos
func main() {
	err := readConfig()
	if err != nil {
		clog.Fatal(err)
		return
	}

	svcConfig := &service1.Config{
		Name:        "GLS",
		DisplayName: "GLS Service",
		Description: "MyGLS labels and parcel statuses proxy",
	}
	prg := &program{}

	s, err := service1.New(prg, svcConfig)
	if err != nil {
		clog.Fatal(err)
		return
	}
	if len(os.Args) > 1 {
		err = service1.Control(s, os.Args[1])
		if err != nil {
			clog.Fatal(err)
		}
		return
	}
	dLogger, err = s.Logger(nil)
	if err != nil {
		clog.Fatal(err)
	}
	err = s.Run()
	if err != nil {
		dLogger.Error(err)
	}
}

func (p *program) Start(s service1.Service) error {
	g, rep, err := initGLS()
	if err != nil {
		return err
	}

	p.group = g
	p.rep = rep
	p.interrupt = make(chan struct{})
	p.quit = make(chan struct{})

	if service1.Interactive() {
		dLogger.Info("Running in terminal.")
		dLogger.Infof("Valid startup parametrs: %q\n", service1.ControlAction)
	} else {
		dLogger.Info("Starting GLS service...")
	}
	// Start should not block. Do the actual work async.
	go p.run()
	return nil
}

func (p *program) run() {
	//close db cnn
	defer func() {
		if p.rep != nil {
			p.rep.Close()
		}
	}()
	running := make(chan struct{})
	//initCancelInterrupt
	p.group.Add(
		func() error {
			select {
			case <-p.interrupt:
				return errors.New("gls: Get interrupt signal")
			case <-running:
				return nil
			}
		}, func(error) {
			close(running)
		})
	dLogger.Info("GLS started")
	dLogger.Info(p.group.Run())
	close(p.quit)
}

func (p *program) Stop(s service1.Service) error {
	// Stop should not block. Return with a few seconds.
	dLogger.Info("GLS Stopping!")
	//interrupt service
	close(p.interrupt)
	//waite service stops
	<-p.quit
	dLogger.Info("GLS stopped")
	return nil
}

func initGLS() (*group.Group, journal.Repository, error) {
	cfg, err := gls.ConfigFromOptions(viper.GetStringMap("gls"))
	if err != nil {
		return nil, nil, err
	}
	if viper.GetString("glsd.address") == "" {
		return nil, nil, errors.New("host:port of local server is not set")
	}

	logger := initLoger(viper.GetString("folders.log"), "gls")
	logger.Log("country", cfg.Country, "test", cfg.TestClient, "insecure", cfg.InsecureSkipVerify, "client", cfg.ClientNumber)

	var opts []gls.Option
	var rep journal.Repository
	if cnn := viper.GetString("mysql"); cnn != "" {
		rep, err = journal.New(cnn)
		if err != nil {
			logger.Log("Open database error", err.Error())
			return nil, nil, fmt.Errorf("database connection error: %w", err)
		}
		opts = journal.Options(rep, log.With(logger, "level", "journal"))
	}

	client, err := gls.NewClient(cfg, log.With(logger, "level", "transport"), opts...)
	if err != nil {
		if rep != nil {
			rep.Close()
		}
		return nil, nil, err
	}

	//init proxy
	pcfg := gls.HandlerConfig{
		Client:       client,
		Logger:       logger,
		ClientNumber: cfg.ClientNumber,
	}

	//label printing may take up to client timeout
	writeTimeout := cfg.Timeout
	if writeTimeout <= 0 {
		writeTimeout = gls.DefaultTimeout
	}
	server := &http.Server{
		Addr:         viper.GetString("glsd.address"),
		Handler:      gls.NewHandler(&pcfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout + 15*time.Second,
		IdleTimeout:  15 * 60 * time.Second,
	}

	g := &group.Group{}
	g.Add(func() error {
		dLogger.Info(fmt.Sprintf("Starting proxy at %s.", server.Addr))
		return server.ListenAndServe()
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	return g, rep, nil
}

func initLoger(logPath, fileName string) log.Logger {
	var logger log.Logger
	if logPath == "" {
		logger = log.NewLogfmtLogger(os.Stderr)
	} else {
		if fileName == "" {
			fileName = "log"
		}
		p := path.Join(logPath, fmt.Sprintf("%s.log", fileName))
		logger = log.NewLogfmtLogger(&lumberjack.Logger{
			Filename:   p,
			MaxSize:    5, // megabytes
			MaxBackups: 5,
			MaxAge:     60, //days
		})
	}
	logger = log.With(logger, "ts", log.DefaultTimestamp)
	logger = log.With(logger, "caller", log.DefaultCaller)

	return logger
}

//ReadConfig init/read viper config
func readConfig() error {
	viper.SetDefault("folders.log", "./log") //Log folder
	viper.SetDefault("glsd.address", ":81")  //localhost
	viper.SetDefault("mysql", "")            //journal MySQL connection string, journal is off if empty

	path, err := osext.ExecutableFolder()
	if err != nil {
		path = "."
	}
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
