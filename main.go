package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gbl08ma/keybox"
	"github.com/gbl08ma/sqalx"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	"github.com/hajersmiai/trainwarehouse/ingestor"
	"github.com/hajersmiai/trainwarehouse/irail"

	_ "github.com/lib/pq"
)

var (
	rdb           *sqlx.DB
	rootSqalxNode sqalx.Node
	secrets       *keybox.Keybox

	mainLog = log.New(os.Stdout, "main", log.Ldate|log.Ltime)
	webLog  = log.New(os.Stdout, "web", log.Ldate|log.Ltime)
)

func main() {
	secretsPath := pflag.String("secrets", SecretsPath, "path to the keybox secrets file")
	listenAddr := pflag.String("listen", "", "trigger server listen address (overrides the keybox key)")
	once := pflag.Bool("once", false, "run a single ingestion and exit")
	extended := pflag.Bool("extended", false, "include the connections pass in the single run")
	pflag.Parse()

	mainLog.Println("Train warehouse ingestor starting, opening keybox...")
	var err error
	secrets, err = keybox.Open(*secretsPath)
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println("Keybox opened")

	mainLog.Println("Opening database...")
	databaseURI, present := secrets.Get("databaseURI")
	if !present {
		mainLog.Fatalln("Database connection string not present in keybox")
	}

	rdb, err = sqlx.Open("postgres", databaseURI)
	if err != nil {
		mainLog.Fatalln(err)
	}
	defer rdb.Close()

	err = rdb.Ping()
	if err != nil {
		mainLog.Fatalln(err)
	}
	rdb.SetMaxOpenConns(MaxDBconnectionPoolSize)

	rootSqalxNode, err = sqalx.New(rdb)
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println("Database opened")

	client := buildClient()
	in, err := ingestor.New(buildIngestorConfig(client))
	if err != nil {
		mainLog.Fatalln(err)
	}

	if *once {
		runOnce(in, *extended)
		return
	}

	SetUpIngestors(in)
	defer TearDownIngestors()

	addr := *listenAddr
	if addr == "" {
		addr, present = secrets.Get("listenAddr")
		if !present {
			addr = ":8079"
		}
	}
	go TriggerServer(addr, in)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	mainLog.Println("Ready, received signal:", <-sigChan)
}

func buildClient() *irail.Client {
	baseURL, _ := secrets.Get("irailBaseURL")
	lang, _ := secrets.Get("irailLang")
	return irail.NewClient(baseURL, lang, log.New(os.Stdout, "irail", log.Ldate|log.Ltime))
}

func buildIngestorConfig(client *irail.Client) ingestor.Config {
	return ingestor.Config{
		Node:           rootSqalxNode,
		Client:         client,
		Log:            log.New(os.Stdout, "ingestor", log.Ldate|log.Ltime),
		Stations:       secretList("liveboardStations"),
		FromStations:   secretList("connectionFromStations"),
		ToStations:     secretList("connectionToStations"),
		DedupeFeedback: DEBUG,
	}
}

func secretList(key string) []string {
	raw, present := secrets.Get(key)
	if !present || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func runOnce(in *ingestor.Ingestor, extended bool) {
	run := in.Run
	if extended {
		run = in.RunExtended
	}
	summary, err := run(context.Background())
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println(summary)
}
