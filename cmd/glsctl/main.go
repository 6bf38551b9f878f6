package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/egorka-gh/gls/gls"
	"github.com/egorka-gh/gls/journal"
	log "github.com/go-kit/kit/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/kardianos/osext"
	"github.com/spf13/viper"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const usage = `usage:
  glsctl status <parcel number> [language] [pod]
  glsctl delete <parcel id> [parcel id...]
  glsctl journal [operation]`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}

	if err := readConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found")
		} else {
			fmt.Println(err.Error())
		}
		return
	}

	logger := initLoger(viper.GetString("folders.log"))

	if os.Args[1] == "journal" {
		listJournal(logger)
		return
	}

	cfg, err := gls.ConfigFromOptions(viper.GetStringMap("gls"))
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	client, err := gls.NewClient(cfg, log.With(logger, "level", "transport"))
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	var resp *gls.Response
	switch os.Args[1] {
	case "status":
		resp, err = status(client, os.Args[2:])
	case "delete":
		resp, err = deleteLabels(client, os.Args[2:])
	default:
		fmt.Println(usage)
		return
	}
	if err != nil {
		logger.Log("cmd", os.Args[1], "err", err.Error())
		fmt.Printf("Error: %s\n", err.Error())
		return
	}
	printJSON(resp.Value)
}

func status(client gls.Service, args []string) (*gls.Response, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("parcel number is not set")
	}
	parcelNumber, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wrong parcel number %s", args[0])
	}
	lang := "EN"
	if len(args) > 1 {
		lang = strings.ToUpper(args[1])
	}
	if !gls.IsSupportedStatusLanguage(lang) {
		return nil, fmt.Errorf("unsupported language %s, expected one of %v", lang, gls.SupportedStatusLanguages)
	}
	pod := len(args) > 2 && args[2] == "pod"

	return client.GetParcelStatuses(context.Background(), gls.GetParcelStatusesRequest{
		ParcelNumber:    parcelNumber,
		ReturnPOD:       pod,
		LanguageIsoCode: lang,
	})
}

func deleteLabels(client gls.Service, args []string) (*gls.Response, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("parcel id is not set")
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wrong parcel id %s", a)
		}
		ids = append(ids, id)
	}
	return client.DeleteLabels(context.Background(), gls.DeleteLabelsRequest{ParcelIDList: ids})
}

func listJournal(logger log.Logger) {
	rep, err := journal.New(viper.GetString("mysql"))
	if err != nil {
		logger.Log("Open database error", err.Error())
		fmt.Printf("Database connection error %s\n", err.Error())
		return
	}
	defer rep.Close()

	var op string
	if len(os.Args) > 2 {
		op = os.Args[2]
	}
	entries, err := rep.List(context.Background(), op, 50)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}
	for _, e := range entries {
		fmt.Printf("%s %-18s ok=%-5v http=%-3d %8s %s %s\n",
			e.Created.Format("2006-01-02 15:04:05"), e.Operation, e.Success, e.HTTPCode, e.Elapsed.Round(1e6), e.Reference, e.Message)
	}
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println(string(b))
}

func initLoger(logPath string) log.Logger {
	var logger log.Logger
	if logPath == "" {
		logger = log.NewLogfmtLogger(os.Stderr)
	} else {
		path := logPath
		if !os.IsPathSeparator(path[len(path)-1]) {
			path = path + string(os.PathSeparator)
		}
		path = path + "glsctl.log"
		logger = log.NewLogfmtLogger(&lumberjack.Logger{
			Filename:   path,
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
	viper.SetDefault("folders.log", "") //Log folder
	viper.SetDefault("mysql", "")       //journal MySQL connection string

	path, err := osext.ExecutableFolder()
	if err != nil {
		path = "."
	}
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
