package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/asdine/storm/v3"
	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/Eshwarpawanpeddi/Jetbot-os/comms"
	"github.com/Eshwarpawanpeddi/Jetbot-os/firmware"
	"github.com/Eshwarpawanpeddi/Jetbot-os/onboard"
	"github.com/Eshwarpawanpeddi/Jetbot-os/telemetry"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"ROBOT_ID" envDefault:"DEV"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	HTMLDIR    string `env:"HTMLDIR" envDefault:"./frontend/dist/"`
	REDIS_ADDR string `env:"REDIS_ADDR" envDefault:""`
	DBFILE     string `env:"DBFILE" envDefault:""`
	DB         *storm.DB
	Conductor  *comms.Conductor
	Robot      onboard.Robot
	Simulated  bool
}

var (
	ENV *EnvConfig
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	env.Parse(ENV)

	// setup database
	dbFile := ENV.DBFILE
	if dbFile == "" {
		dbFile, _ = filepath.Abs("./tmp/dev.db")
		dir := filepath.Dir(dbFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.Mkdir(dir, 0755)
		}
	}

	db, err := openDb(dbFile)
	if err != nil {
		panic(err)
	}
	ENV.DB = db
}

func main() {
	// process flags
	simulated := flag.Bool("sim", false, "Run the device with a simulated controller link")
	port := flag.String("port", "0.0.0.0:80", "Specify the ip:port to listen on")
	configPath := flag.String("config", "", "Path to robot_config.yaml")
	flag.Parse()

	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	defer ENV.DB.Close() // close database when finished

	// Load the device description
	filename := *configPath
	var err error
	if filename == "" {
		filename, err = filepath.Abs(ENV.SRCDIR + "/robot_config.yaml")
		if err != nil {
			panic(err)
		}
	}

	config, err := onboard.LoadConfig(filename)
	if err != nil {
		panic(fmt.Sprintf("Unable to load robot config: %v", err))
	}

	// Connect the motor controller
	ENV.Simulated = *simulated
	var link firmware.Conn
	if ENV.Simulated {
		println("Creating simulated controller link")
		link = firmware.NewSimLink()
	} else {
		link, err = firmware.Open(config.Serial.Port, config.Serial.Baud)
		if err != nil {
			panic(fmt.Sprintf("Unable to open controller link: %v", err))
		}
	}

	// Optional redis state mirror
	var mirror *telemetry.Publisher
	if ENV.REDIS_ADDR != "" {
		mirror = telemetry.NewPublisher(ENV.REDIS_ADDR)
		defer mirror.Close()
	}

	robot := onboard.NewMotorRobot(config, link, mirror)
	ENV.Robot = robot

	ENV.Conductor = comms.NewConductor(robot)

	ctx, cancel := context.WithCancel(context.Background())
	go ENV.Conductor.UpdateClients(ctx)

	// final stop on the way out
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		robot.Destroy()
		ENV.DB.Close()
		os.Exit(0)
	}()

	// Create a local shell
	shell := buildShell(robot)
	go shell.Start()

	//---
	// Build the API routes
	//---
	r.Route("/api", func(r chi.Router) {
		// login
		r.Post("/login", Login)

		r.Route("/", func(r chi.Router) {
			// Seek, verify and validate JWT tokens
			r.Use(ValidateJWT)

			r.Get("/refresh_token", JWTRefresh)
			r.Get("/status", GetStatus)

			r.Post("/motor", MotorControl)
			r.Post("/motor/stop", MotorStop)
			r.Post("/mode", SetMode)
		})
	})

	// Add websocket routes
	r.Route("/ws", func(r chi.Router) {
		if !ENV.DEBUG {
			r.Use(ValidateJWT)
		} else {
			fmt.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/control", ControlHandler)
		r.Get("/telemetry", TelemetryHandler)
	})

	// add static base routes
	FileServer(r, "/", http.Dir(ENV.HTMLDIR))

	fmt.Println("Listening on port", *port)
	if err := http.ListenAndServe(*port, r); err != nil {
		log.Fatal(err)
	}
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		return nil, err
	}

	return
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := http.StripPrefix(path, http.FileServer(root))

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}))
}
